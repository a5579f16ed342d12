package catalog

// Tier maps a minimum token balance to a named access bucket.
type Tier struct {
	Threshold float64 `json:"threshold"`
	Label     string  `json:"label"`
}

// DefaultTiers must stay sorted ascending by threshold. The zero
// threshold makes the mapping total: every non-negative balance lands
// in exactly one tier.
var DefaultTiers = []Tier{
	{Threshold: 0, Label: "free"},
	{Threshold: 1000, Label: "supporter"},
	{Threshold: 10000, Label: "inner-circle"},
	{Threshold: 100000, Label: "soulmate"},
}

// TierFor walks thresholds ascending and keeps the last one the balance
// satisfies, i.e. the highest threshold <= balance.
func TierFor(balance float64, tiers []Tier) string {
	label := ""
	for _, t := range tiers {
		if balance >= t.Threshold {
			label = t.Label
		}
	}
	return label
}
