package draft

import "github.com/m04kA/HCS-BookingService/internal/domain"

// CatalogEventType is the kind of catalog change carried in an event.
type CatalogEventType string

const (
	CatalogInsert CatalogEventType = "insert"
	CatalogUpdate CatalogEventType = "update"
	CatalogDelete CatalogEventType = "delete"
)

// CatalogEvent is one change to the organization catalog. Exactly one of
// Service / Option is set; delete events only need the id fields filled.
type CatalogEvent struct {
	Type    CatalogEventType      `json:"type"`
	Service *domain.Service       `json:"service,omitempty"`
	Option  *domain.ServiceOption `json:"option,omitempty"`
}

// ApplyCatalogEvent folds a catalog change into the draft snapshot and
// recomputes the quote. Selections that lose their catalog entry are
// dropped by the recompute, so a deleted service silently leaves the cart.
func (d *Draft) ApplyCatalogEvent(ev CatalogEvent) {
	switch {
	case ev.Service != nil:
		d.Services = reduceServices(d.Services, ev.Type, *ev.Service)
	case ev.Option != nil:
		d.Options = reduceOptions(d.Options, ev.Type, *ev.Option)
	default:
		return
	}
	d.touch()
}

// reduceServices is a pure reducer over the service snapshot.
func reduceServices(services []domain.Service, t CatalogEventType, svc domain.Service) []domain.Service {
	switch t {
	case CatalogInsert:
		for _, existing := range services {
			if existing.ID == svc.ID {
				return services // повторная вставка не дублирует запись
			}
		}
		return append(services, svc)
	case CatalogUpdate:
		out := make([]domain.Service, len(services))
		copy(out, services)
		for i := range out {
			if out[i].ID == svc.ID {
				out[i] = svc
				return out
			}
		}
		return out
	case CatalogDelete:
		out := make([]domain.Service, 0, len(services))
		for _, existing := range services {
			if existing.ID != svc.ID {
				out = append(out, existing)
			}
		}
		return out
	default:
		return services
	}
}

// reduceOptions is a pure reducer over the option snapshot.
func reduceOptions(options []domain.ServiceOption, t CatalogEventType, opt domain.ServiceOption) []domain.ServiceOption {
	switch t {
	case CatalogInsert:
		for _, existing := range options {
			if existing.ID == opt.ID {
				return options
			}
		}
		return append(options, opt)
	case CatalogUpdate:
		out := make([]domain.ServiceOption, len(options))
		copy(out, options)
		for i := range out {
			if out[i].ID == opt.ID {
				out[i] = opt
				return out
			}
		}
		return out
	case CatalogDelete:
		out := make([]domain.ServiceOption, 0, len(options))
		for _, existing := range options {
			if existing.ID != opt.ID {
				out = append(out, existing)
			}
		}
		return out
	default:
		return options
	}
}
