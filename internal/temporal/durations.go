package temporal

import "github.com/underdog7S/zenith-widgets/internal/catalog"

// DefaultDurationMinutes is assumed when a service carries no duration.
const DefaultDurationMinutes = 30

// DurationTable maps service ids to appointment lengths, populated from
// the loaded service catalog.
type DurationTable map[int]int

// NewDurationTable indexes the service catalog by id.
func NewDurationTable(services []catalog.Service) DurationTable {
	table := make(DurationTable, len(services))
	for _, s := range services {
		if s.DurationMinutes > 0 {
			table[s.ID] = s.DurationMinutes
		}
	}
	return table
}

// Lookup returns the duration for a service id, defaulting when absent.
func (t DurationTable) Lookup(serviceID int) int {
	if minutes, ok := t[serviceID]; ok {
		return minutes
	}
	return DefaultDurationMinutes
}
