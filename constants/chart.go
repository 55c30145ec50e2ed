package constants

// SeedCategory is one row of the starter chart of categories.
type SeedCategory struct {
	Code         string
	Name         string
	Description  string
	URLSlug      string
	CategoryType string
	Color        string
	Icon         string
}

// DefaultChart returns the chart of categories seeded into an empty
// database. Codes group by classification prefix.
func DefaultChart() []SeedCategory {
	return []SeedCategory{
		{Code: "ASSET.001", Name: "Cash", URLSlug: "cash", CategoryType: Asset, Color: "#2E7D32", Icon: "wallet"},
		{Code: "ASSET.002", Name: "Bank Accounts", URLSlug: "bank-accounts", CategoryType: Asset, Color: "#1B5E20", Icon: "bank"},
		{Code: "LIAB.001", Name: "Credit Cards", URLSlug: "credit-cards", CategoryType: Liability, Color: "#B71C1C", Icon: "credit-card"},
		{Code: "LIAB.002", Name: "Loans", URLSlug: "loans", CategoryType: Liability, Color: "#C62828", Icon: "scale"},
		{Code: "EQ.001", Name: "Opening Balances", URLSlug: "opening-balances", CategoryType: Equity, Color: "#4527A0", Icon: "flag"},
		{Code: "INC.001", Name: "Salary", URLSlug: "salary", CategoryType: Income, Color: "#00695C", Icon: "briefcase"},
		{Code: "INC.002", Name: "Interest", URLSlug: "interest", CategoryType: Income, Color: "#00796B", Icon: "percent"},
		{Code: "EXP.001", Name: "Housing", Description: "Rent, mortgage and home maintenance", URLSlug: "housing", CategoryType: Expense, Color: "#E65100", Icon: "home"},
		{Code: "EXP.002", Name: "Groceries", URLSlug: "groceries", CategoryType: Expense, Color: "#EF6C00", Icon: "cart"},
		{Code: "EXP.003", Name: "Transport", URLSlug: "transport", CategoryType: Expense, Color: "#F57C00", Icon: "car"},
		{Code: "EXP.004", Name: "Utilities", URLSlug: "utilities", CategoryType: Expense, Color: "#FF8F00", Icon: "bolt"},
		{Code: "EXP.005", Name: "Dining Out", URLSlug: "dining-out", CategoryType: Expense, Color: "#FF6F00", Icon: "utensils"},
	}
}
