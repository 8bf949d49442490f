package services

// ConsolidateBudgets merges per-sector budgets into one project-wide tree.
// The first sector in the given order provides the structure, descriptions
// and unit prices; metrados are zeroed and then summed across all sectors
// by section id, group id and item id. Items that exist only in later
// sectors are ignored, matching how the consolidated view has always
// behaved. The sector order must be stable (storage order, never map
// iteration) so repeated runs produce identical trees.
func ConsolidateBudgets(orderedSectorIDs []string, budgetBySector map[string][]BudgetSection) []BudgetSection {
	var template []BudgetSection
	for _, id := range orderedSectorIDs {
		if b, ok := budgetBySector[id]; ok && len(b) > 0 {
			template = b
			break
		}
	}
	if template == nil {
		return nil
	}

	out := cloneBudget(template)
	for si := range out {
		for gi := range out[si].Groups {
			for ii := range out[si].Groups[gi].Items {
				out[si].Groups[gi].Items[ii].Metrado = 0
			}
		}
	}

	for _, sectorID := range orderedSectorIDs {
		budget := budgetBySector[sectorID]
		for si := range out {
			src := findSection(budget, out[si].ID)
			if src == nil {
				continue
			}
			for gi := range out[si].Groups {
				grp := findGroup(src.Groups, out[si].Groups[gi].ID)
				if grp == nil {
					continue
				}
				for ii := range out[si].Groups[gi].Items {
					if item := findItem(grp.Items, out[si].Groups[gi].Items[ii].ID); item != nil {
						out[si].Groups[gi].Items[ii].Metrado += item.Metrado
					}
				}
			}
		}
	}
	return out
}

func cloneBudget(budget []BudgetSection) []BudgetSection {
	out := make([]BudgetSection, len(budget))
	for i, section := range budget {
		out[i] = section
		out[i].Groups = make([]BudgetGroup, len(section.Groups))
		for j, group := range section.Groups {
			out[i].Groups[j] = group
			out[i].Groups[j].Items = make([]BudgetItem, len(group.Items))
			copy(out[i].Groups[j].Items, group.Items)
			for k, item := range group.Items {
				if item.Selected != nil {
					sel := *item.Selected
					out[i].Groups[j].Items[k].Selected = &sel
				}
			}
		}
	}
	return out
}

func findSection(sections []BudgetSection, id string) *BudgetSection {
	for i := range sections {
		if sections[i].ID == id {
			return &sections[i]
		}
	}
	return nil
}

func findGroup(groups []BudgetGroup, id string) *BudgetGroup {
	for i := range groups {
		if groups[i].ID == id {
			return &groups[i]
		}
	}
	return nil
}

func findItem(items []BudgetItem, id string) *BudgetItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
