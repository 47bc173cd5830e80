package categorization

// Category labels produced by the classifier. The same label is stored as both
// the primary and detailed category of an imported transaction.
const (
	CategoryOther          = "other"
	CategoryGroceries      = "groceries"
	CategoryDining         = "dining"
	CategoryTransportation = "transportation"
	CategoryUtilities      = "utilities"
	CategoryEntertainment  = "entertainment"
	CategoryHealth         = "health"
	CategoryShopping       = "shopping"
	CategoryTech           = "tech"
	CategoryTravel         = "travel"
	CategorySubscriptions  = "subscriptions"
	CategoryPet            = "pet"
	CategoryCharity        = "charity"
	CategoryEducation      = "education"
	CategoryInsurance      = "insurance"
	CategoryRent           = "rent"

	CategoryIncome     = "income"
	CategorySalary     = "salary"
	CategoryDeposit    = "deposit"
	CategoryStipend    = "stipend"
	CategoryRentIncome = "rentIncome"
	CategoryTips       = "tips"
	CategoryInterest   = "interest"
	CategoryDividend   = "dividend"
	CategoryRSU        = "rsu"

	CategoryFee        = "fee"
	CategoryCash       = "cash"
	CategoryPayment    = "payment"
	CategoryTransfer   = "transfer"
	CategoryLoanEscrow = "loanEscrow"
	CategoryLoanBills  = "loanBills"

	CategoryInvestment         = "investment"
	CategoryInvestmentInterest = "investmentInterest"
	CategoryInvestmentDividend = "investmentDividend"
	CategoryInvestmentTransfer = "investmentTransfer"
	CategoryInvestmentFees     = "investmentFees"
	CategoryInvestmentPurchase = "investmentPurchase"
	CategoryInvestmentSold     = "investmentSold"
)
