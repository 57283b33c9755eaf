package lineservice

// Message одно сообщение в push-запросе LINE Messaging API
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PushRequest тело запроса POST /v2/bot/message/push
type PushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

// ErrorResponse модель ошибки от LINE API
type ErrorResponse struct {
	Message string `json:"message"`
}

// Logger интерфейс логгера
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
