package postalservice

// Address адрес, найденный по почтовому индексу
type Address struct {
	PostalCode string `json:"postal_code"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Town       string `json:"town"`
}

// Full возвращает адрес одной строкой
func (a Address) Full() string {
	return a.Prefecture + a.City + a.Town
}

// lookupResponse ответ zipcloud API
type lookupResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Results []struct {
		Zipcode  string `json:"zipcode"`
		Address1 string `json:"address1"` // префектура
		Address2 string `json:"address2"` // город
		Address3 string `json:"address3"` // район
	} `json:"results"`
}

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
