package location

// Provider identifiers assigned to subsidiaries by the location-config
// service.
const (
	ProviderDirectDebit = "direct_debit"
	ProviderCardGateway = "card_gateway"
)

// Subsidiary ties a location to one provider's merchant credentials and
// settlement currency. Read-only input from the location-config service.
type Subsidiary struct {
	ID           int64  `json:"id"`
	Provider     string `json:"provider"`
	Currency     string `json:"currency"`
	MerchantID   string `json:"merchant_id"`
	PortalID     string `json:"portal_id"`
	Key          string `json:"key"`
	SubAccountID string `json:"sub_account_id"`
}

// Config is a location with its configured subsidiaries.
type Config struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Subsidiaries []Subsidiary `json:"subsidiaries"`
}

// SubsidiaryByID finds a subsidiary by id, nil when absent.
func (c *Config) SubsidiaryByID(id int64) *Subsidiary {
	for i := range c.Subsidiaries {
		if c.Subsidiaries[i].ID == id {
			return &c.Subsidiaries[i]
		}
	}
	return nil
}

// SubsidiaryFor finds the subsidiary assigned to the given provider,
// nil when the location has none.
func (c *Config) SubsidiaryFor(provider string) *Subsidiary {
	for i := range c.Subsidiaries {
		if c.Subsidiaries[i].Provider == provider {
			return &c.Subsidiaries[i]
		}
	}
	return nil
}
