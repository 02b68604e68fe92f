package transport

// Ledger is a source's stock and money account.
type Ledger interface {
	ResourceAmount(resourceID string) int
	TryConsumeResource(resourceID string, amount int) bool
	AddResource(resourceID string, amount int)
	Money() float64
	SetMoney(amount float64)
}

// Counterparty is the trading partner at the far end of a route.
type Counterparty interface {
	SellStock(resourceID string) int
	TryDeductSellStock(resourceID string, amount int) bool
	AddBuyDemand(resourceID string, amount int, unitPrice float64)
	FactionID() string
}

// Pricing is the faction pricing and reputation policy.
type Pricing interface {
	// SellPrice is what the faction pays for amount units sold to it.
	SellPrice(factionID, resourceID string, amount int) float64
	// BuyPrice is what the faction charges for amount units bought from it.
	BuyPrice(factionID, resourceID string, amount int) float64
	ModifyReputation(factionID string, delta float64)
}

// Directory resolves collaborators by id.
type Directory interface {
	Ledger(sourceID string) (Ledger, bool)
	Counterparty(targetID string) (Counterparty, bool)
}

// MapDirectory is a Directory backed by two maps.
type MapDirectory struct {
	Ledgers        map[string]Ledger
	Counterparties map[string]Counterparty
}

// Ledger resolves a source.
func (d MapDirectory) Ledger(sourceID string) (Ledger, bool) {
	l, ok := d.Ledgers[sourceID]
	return l, ok
}

// Counterparty resolves a target.
func (d MapDirectory) Counterparty(targetID string) (Counterparty, bool) {
	cp, ok := d.Counterparties[targetID]
	return cp, ok
}
