package services

// Financial roll-up over the budget tree. Quantities come from the
// measurement aggregator; money stays unrounded until formatting.

// Waterfall rates and fixed contract lines, straight from the signed
// contract annexes.
const (
	OverheadRate = 0.1446
	ProfitRate   = 0.10
	FeeRate      = 0.0925
	TaxRate      = 0.18

	ManagementCost        = 9_537_937.87
	NeighborRelationsCost = 449_186.01
	AuxiliaryAreasCost    = 211_593.17
	QuarryRightsCost      = 2_867_059.36
)

// WaterfallConfig parameterizes ApplyWaterfall. DefaultWaterfallConfig is
// what every report uses; the struct exists so a what-if endpoint can vary
// the rates without touching the fixed contract figures elsewhere.
type WaterfallConfig struct {
	OverheadRate float64
	ProfitRate   float64
	FeeRate      float64
	TaxRate      float64

	ManagementCost        float64
	NeighborRelationsCost float64
	AuxiliaryAreasCost    float64
	QuarryRightsCost      float64
}

func DefaultWaterfallConfig() WaterfallConfig {
	return WaterfallConfig{
		OverheadRate:          OverheadRate,
		ProfitRate:            ProfitRate,
		FeeRate:               FeeRate,
		TaxRate:               TaxRate,
		ManagementCost:        ManagementCost,
		NeighborRelationsCost: NeighborRelationsCost,
		AuxiliaryAreasCost:    AuxiliaryAreasCost,
		QuarryRightsCost:      QuarryRightsCost,
	}
}

// Waterfall is the full cost build-up from direct cost to total with tax.
type Waterfall struct {
	DirectCost        float64 `json:"directCost"`
	Overhead          float64 `json:"overhead"`
	Profit            float64 `json:"profit"`
	Subtotal          float64 `json:"subtotal"`
	Management        float64 `json:"management"`
	NeighborRelations float64 `json:"neighborRelations"`
	AuxiliaryAreas    float64 `json:"auxiliaryAreas"`
	QuarryRights      float64 `json:"quarryRights"`
	DeterminedCost    float64 `json:"determinedCost"`
	Fee               float64 `json:"fee"`
	TotalBeforeTax    float64 `json:"totalBeforeTax"`
	Tax               float64 `json:"tax"`
	TotalWithTax      float64 `json:"totalWithTax"`
}

// ApplyWaterfall builds the cost waterfall on top of a direct cost. Every
// intermediate figure is kept unrounded.
func ApplyWaterfall(directCost float64, cfg WaterfallConfig) Waterfall {
	w := Waterfall{DirectCost: directCost}
	w.Overhead = directCost * cfg.OverheadRate
	w.Profit = directCost * cfg.ProfitRate
	w.Subtotal = directCost + w.Overhead + w.Profit

	w.Management = cfg.ManagementCost
	w.NeighborRelations = cfg.NeighborRelationsCost
	w.AuxiliaryAreas = cfg.AuxiliaryAreasCost
	w.QuarryRights = cfg.QuarryRightsCost
	w.DeterminedCost = w.Subtotal + w.Management + w.NeighborRelations + w.AuxiliaryAreas + w.QuarryRights

	w.Fee = w.DeterminedCost * cfg.FeeRate
	w.TotalBeforeTax = w.DeterminedCost + w.Fee
	w.Tax = w.TotalBeforeTax * cfg.TaxRate
	w.TotalWithTax = w.TotalBeforeTax + w.Tax
	return w
}

// AnnotatedItem is a budget item with its executed figures attached.
type AnnotatedItem struct {
	BudgetItem
	ExecutedQty     float64 `json:"executedQty"`
	BalanceQty      float64 `json:"balanceQty"`
	OverrunQty      float64 `json:"overrunQty"`
	DeductiveQty    float64 `json:"deductiveQty"`
	Percentage      float64 `json:"percentage"`
	ContractualCost float64 `json:"contractualCost"`
	ExecutedCost    float64 `json:"executedCost"`
}

// GroupTotals sums the selected items of one grouping level.
type GroupTotals struct {
	Contractual float64 `json:"contractual"`
	Executed    float64 `json:"executed"`
	Balance     float64 `json:"balance"`
	Overrun     float64 `json:"overrun"`
	Deductive   float64 `json:"deductive"`
	Percentage  float64 `json:"percentage"`
}

type AnnotatedGroup struct {
	ID     string          `json:"id"`
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Items  []AnnotatedItem `json:"items"`
	Totals GroupTotals     `json:"totals"`
}

type AnnotatedSection struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Groups []AnnotatedGroup `json:"groups"`
	Totals GroupTotals      `json:"totals"`
}

// AnnotatedBudget is the whole tree plus roll-up totals.
type AnnotatedBudget struct {
	Sections []AnnotatedSection `json:"sections"`
	Totals   GroupTotals        `json:"totals"`
}

func (t *GroupTotals) add(o GroupTotals) {
	t.Contractual += o.Contractual
	t.Executed += o.Executed
	t.Balance += o.Balance
	t.Overrun += o.Overrun
	t.Deductive += o.Deductive
}

func (t *GroupTotals) finish() {
	if t.Contractual > 0 {
		t.Percentage = t.Executed / t.Contractual * 100
	}
}

func annotateItem(item BudgetItem, rows []Measurement) AnnotatedItem {
	executed := ExecutedQuantity(item.Code, rows)
	balance := item.Metrado - executed
	a := AnnotatedItem{
		BudgetItem:  item,
		ExecutedQty: executed,
		BalanceQty:  balance,
	}
	if executed > item.Metrado {
		a.OverrunQty = executed - item.Metrado
	}
	if balance > 0 {
		a.DeductiveQty = balance
	}
	if item.Metrado > 0 {
		a.Percentage = executed / item.Metrado * 100
	}
	a.ContractualCost = item.Metrado * item.Price
	a.ExecutedCost = executed * item.Price
	return a
}

// AnnotateBudget attaches executed quantities and costs to every item in
// the tree. Every item is annotated, but deselected ones are left out of
// the group, section, and budget totals.
func AnnotateBudget(budget []BudgetSection, rows []Measurement) AnnotatedBudget {
	out := AnnotatedBudget{Sections: make([]AnnotatedSection, 0, len(budget))}
	for _, section := range budget {
		as := AnnotatedSection{
			ID:     section.ID,
			Name:   section.Name,
			Groups: make([]AnnotatedGroup, 0, len(section.Groups)),
		}
		for _, group := range section.Groups {
			ag := AnnotatedGroup{
				ID:    group.ID,
				Code:  group.Code,
				Name:  group.Name,
				Items: make([]AnnotatedItem, 0, len(group.Items)),
			}
			for _, item := range group.Items {
				ai := annotateItem(item, rows)
				ag.Items = append(ag.Items, ai)
				if !item.IsSelected() {
					continue
				}
				ag.Totals.Contractual += ai.ContractualCost
				ag.Totals.Executed += ai.ExecutedCost
				ag.Totals.Overrun += ai.OverrunQty * item.Price
				ag.Totals.Deductive += ai.DeductiveQty * item.Price
				if ai.BalanceQty > 0 {
					ag.Totals.Balance += ai.BalanceQty * item.Price
				}
			}
			ag.Totals.finish()
			as.Totals.add(ag.Totals)
			as.Groups = append(as.Groups, ag)
		}
		as.Totals.finish()
		out.Totals.add(as.Totals)
		out.Sections = append(out.Sections, as)
	}
	out.Totals.finish()
	return out
}

// DirectCost is the contractual cost of the selected items, the base of
// the waterfall.
func DirectCost(budget []BudgetSection) float64 {
	var total float64
	for _, section := range budget {
		for _, group := range section.Groups {
			for _, item := range group.Items {
				if item.IsSelected() {
					total += item.Metrado * item.Price
				}
			}
		}
	}
	return total
}
