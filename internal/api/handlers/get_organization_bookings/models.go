package get_organization_bookings

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/HCS-BookingService/internal/domain"
	"github.com/m04kA/HCS-BookingService/internal/service/bookings/models"
)

// ToServiceRequest собирает запрос к сервису из path и query параметров
func ToServiceRequest(organizationID, userID int64, startDateStr, endDateStr, statusStr, includeInactiveStr string) (*models.GetOrganizationBookingsRequest, error) {
	req := &models.GetOrganizationBookingsRequest{
		UserID:         userID,
		OrganizationID: organizationID,
	}

	if startDateStr != "" {
		startDate, err := time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate: %w", err)
		}
		req.StartDate = &startDate
	}

	if endDateStr != "" {
		endDate, err := time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate: %w", err)
		}
		req.EndDate = &endDate
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
