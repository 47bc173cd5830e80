package categorization

// MerchantRule maps a lowercase description pattern to a category.
type MerchantRule struct {
	Pattern  string `yaml:"pattern"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type merchantGroup struct {
	category string
	patterns []string
}

// merchantGroups is the curated merchant table. Groups are checked in order and
// specific names sit above broader ones ("costco gas" before "costco", "uber
// eats" before "uber").
var merchantGroups = []merchantGroup{
	{CategoryTransportation, []string{
		"costco gas", "sams club fuel", "safeway fuel", "fred meyer fuel", "kroger fuel",
	}},
	{CategoryDining, []string{
		"uber eats", "ubereats", "doordash", "grubhub", "postmates", "seamless", "caviar",
	}},
	{CategoryGroceries, []string{
		"amazon fresh", "amazonfresh", "whole foods", "wholefoods", "wholefds", "instacart",
	}},
	{CategoryEntertainment, []string{
		"amazon prime video", "prime video", "apple tv", "apple music", "youtube premium", "youtube tv",
		"netflix", "huluplus", "hulu", "spotify", "disney+", "disney plus", "disneyplus", "hbo max",
		"paramount+", "paramount plus", "peacock", "crunchyroll", "pandora", "siriusxm", "sirius xm",
		"amc theatres", "amc theaters", "regal cinemas", "cinemark", "fandango", "ticketmaster",
		"stubhub", "eventbrite", "playstation", "xbox", "nintendo", "steam games", "twitch",
		"conundroom", "escape room",
	}},
	{CategorySubscriptions, []string{
		"adobe", "barrons", "nytimes", "new york times", "wsj", "wall street journal",
		"washington post", "the atlantic", "economist", "medium.com", "patreon", "substack",
		"audible", "kindle unlimited", "linkedin premium", "apple.com/bill", "icloud",
		"google storage", "google one", "microsoft 365", "office 365",
	}},
	{CategoryTech, []string{
		"chatgpt", "chat gpt", "openai", "open ai", "anthropic", "claude.ai", "github", "gitlab",
		"amazon web services", "aws", "google cloud", "digitalocean", "heroku", "vercel", "netlify",
		"cloudflare", "notion", "figma", "slack", "zoom.us", "dropbox", "1password", "jetbrains",
		"cursor ai", "godaddy", "namecheap", "squarespace", "microsoft",
	}},
	{CategoryTransportation, []string{
		"uber", "lyft", "waymo", "taxi", "yellow cab", "curb mobility",
		"shell oil", "shell service", "shell", "chevron", "exxon", "exxonmobil", "mobil", "texaco",
		"valero", "sunoco", "speedway", "circle k", "wawa", "sheetz", "quiktrip", "arco", "bp",
		"76 gas", "conoco", "phillips 66", "marathon petro", "love's travel", "pilot travel",
		"pay by phone", "paybyphone", "parkmobile", "impark", "sp plus", "laz parking", "diamond parking",
		"wsdot", "goodtogo", "good to go", "e-zpass", "ezpass", "ez pass", "fastrak", "sunpass",
		"caltrans", "txtag", "ez tag", "ipass", "i-pass", "sdot", "nysdot", "txdot", "penndot",
		"sound transit", "king county metro", "orca card", "clipper card", "bart", "mta", "metrocard",
		"amtrak", "greyhound", "lime ride", "bird ride", "jiffy lube", "autozone", "o'reilly auto",
		"discount tire", "les schwab", "pep boys", "tesla supercharger", "chargepoint", "electrify america",
		"kwik sak", "buc-ee", "76 station", "eractoll", "airport cart", "seattleap cart", "cart/chair",
	}},
	{CategoryTravel, []string{
		"delta air", "united airlines", "american airlines", "alaska air", "southwest air", "jetblue",
		"spirit airl", "frontier airlines", "hawaiian air", "air canada", "british airways", "lufthansa",
		"emirates", "airbnb", "vrbo", "marriott", "hilton", "hyatt", "ihg", "holiday inn", "best western",
		"expedia", "booking.com", "hotels.com", "priceline", "kayak", "hertz", "avis", "enterprise rent",
		"national car", "budget rent", "tsa precheck",
	}},
	{CategoryDining, []string{
		"starbucks", "mcdonald", "burger king", "burgerking", "wendy's", "wendys", "taco bell", "kfc",
		"pizza hut", "domino's", "dominos", "papa john", "little caesar", "dunkin", "tim hortons",
		"panera", "chipotle", "subway", "chick-fil-a", "five guys", "shake shack", "in-n-out",
		"jack in the box", "popeyes", "sonic drive", "dairy queen", "wingstop", "panda express",
		"olive garden", "applebee", "chili's", "ihop", "denny's", "cheesecake factory", "peet's",
		"dutch bros", "blue bottle", "jamba", "smoothie king", "qdoba", "daeho", "tutta bella",
		"tuttabella", "simply indian", "insomnia cookies", "kyuramen", "desi dhaba", "mendocino farms",
		"il fornaio", "sunny honey", "resy", "opentable", "tst*", "kyurmaen", "deep dive", "messina",
		"supreme dumplings", "cucina venti", "medocinofarms", "laughing monk", "indian sizzler",
		"shana thai", "tpd", "paypams", "banaras", "maxmillen", "skills rainbow room",
	}},
	{CategoryGroceries, []string{
		"trader joe", "kroger", "safeway", "albertsons", "publix", "wegmans", "h-e-b", "heb", "aldi",
		"lidl", "costco", "sam's club", "sams club", "bj's wholesale", "sprouts", "fred meyer", "qfc",
		"ralphs", "vons", "food lion", "giant eagle", "meijer", "stop & shop", "harris teeter",
		"h mart", "99 ranch", "uwajimaya", "patel brothers", "apna bazaar", "walmart supercenter",
		"wm supercenter", "walmart", "target",
	}},
	{CategoryHealth, []string{
		"cvs", "walgreens", "rite aid", "kaiser", "labcorp", "quest diagnostics", "one medical",
		"24 hour fitness", "planet fitness", "equinox", "la fitness", "lifetime fitness", "ymca",
		"orangetheory", "crossfit", "pro club", "gold's gym", "anytime fitness", "crunch fitness",
		"supercuts", "great clips", "lucky hair salon", "lucky hair salin", "hair salon", "nail salon",
		"summit at snoqualmie", "badminton club", "massage envy", "stop 4 nails",
	}},
	{CategoryShopping, []string{
		"amazon.com", "amazon mktp", "amzn mktp", "amzn", "amazon", "ebay", "etsy", "best buy",
		"home depot", "lowe's", "lowes", "ikea", "wayfair", "macy's", "nordstrom", "kohl's",
		"tj maxx", "marshalls", "ross stores", "old navy", "h&m", "zara", "uniqlo", "nike", "rei",
		"apple store", "sephora", "ulta", "ace hardware", "harbor freight", "mini mountain",
		"ski gear", "ski equipment", "dick's sporting", "michaels", "joann", "bed bath", "costco.com",
	}},
	{CategoryUtilities, []string{
		"puget sound energy", "seattle city light", "city light", "pg&e", "pge", "con edison",
		"duke energy", "dominion energy", "xcel energy", "waste management", "republic services",
		"recology", "water district", "sewer district",
	}},
	{CategoryPet, []string{
		"petco", "petsmart", "chewy", "banfield", "bark box", "barkbox", "rover.com",
	}},
	{CategoryCharity, []string{
		"red cross", "unicef", "salvation army", "gofundme", "doctors without borders", "wikimedia",
		"st jude",
	}},
	{CategoryEducation, []string{
		"coursera", "udemy", "khan academy", "masterclass", "duolingo", "chegg",
	}},
	{CategoryInsurance, []string{
		"geico", "progressive ins", "state farm", "allstate", "liberty mutual", "lemonade ins", "usaa ins",
	}},
}

// descriptionKeywordGroups back the free-text fallback. They describe a kind of
// business rather than a named one.
var descriptionKeywordGroups = []merchantGroup{
	{CategoryTransportation, []string{
		"gas station", "fuel", "parking", "toll", "transit", "rideshare", "car wash", "auto repair",
	}},
	{CategoryDining, []string{
		"restaurant", "restaur", "cafe", "coffee", "bistro", "grill", "pizzeria", "pizza", "diner",
		"bakery", "brewing", "brewery", "taqueria", "sushi", "ramen", "bbq", "kitchen", "eatery",
		"dumpling", "dumplings", "burger", "dhaba", "kabob", "kebab", "thai", "noodle", "taco",
	}},
	{CategoryGroceries, []string{
		"grocery", "supermarket", "market", "produce", "butcher",
	}},
	{CategoryHealth, []string{
		"pharmacy", "clinic", "medical", "dental", "dentist", "hospital", "optometry", "optometrist", "physician",
		"fitness", "gym", "salon", "spa", "massage", "barber", "nails", "cosmetic",
	}},
	{CategoryShopping, []string{
		"clothing", "apparel", "shoes", "boutique", "department store", "hardware", "outlet", "store",
	}},
	{CategoryTravel, []string{
		"airline", "airlines", "hotel", "motel", "resort", "inn", "flight", "car rental",
	}},
	{CategoryUtilities, []string{
		"electric", "energy", "water", "utility", "utilities", "internet", "wireless",
	}},
	{CategoryEntertainment, []string{
		"cinema", "theater", "theatre", "concert", "museum", "bowling",
	}},
	{CategorySubscriptions, []string{
		"subscription", "membership",
	}},
	{CategoryInsurance, []string{
		"insurance",
	}},
	{CategoryEducation, []string{
		"tuition", "university", "college",
	}},
	{CategoryPet, []string{
		"veterinary", "vet clinic", "pet",
	}},
	{CategoryCharity, []string{
		"donation", "charity", "foundation",
	}},
	{CategoryFee, []string{
		"fee", "service charge", "overdraft",
	}},
}

// Provider lists used before the general merchant table. They are checked
// against merchant and description text together.
var (
	cableInternetProviders = []string{
		"comcast", "xfinity", "xfinity mobile", "spectrum", "charter spectrum", "charter comm",
		"cox communications", "cox cable", "optimum", "altice", "frontier communications",
		"frontier comm", "centurylink", "century link", "windstream", "suddenlink", "mediacom",
		"dish network", "directv", "direct tv", "att u-verse", "att uverse", "verizon fios", "fios",
		"ziply", "astound", "wave broadband",
	}
	phoneProviders = []string{
		"verizon wireless", "verizon", "at&t", "att", "t-mobile", "tmobile", "sprint", "us cellular",
		"cricket wireless", "boost mobile", "metropcs", "metro pcs", "mint mobile", "google fi",
		"straight talk", "us mobile",
	}
	utilityCompanies = []string{
		"puget sound energy", "puget sound ener", "pacific gas", "pg&e", "southern california edison",
		"san diego gas", "sdge", "con edison", "coned", "duke energy", "dominion energy", "exelon",
		"firstenergy", "first energy", "american electric power", "southern company", "nextera",
		"xcel energy", "centerpoint", "entergy", "evergy", "pacificorp", "portland general",
		"seattle city light", "snohomish pud", "national grid", "eversource",
	}
)

// merchantTable flattens the groups into ordered rules.
func merchantTable(groups []merchantGroup) []MerchantRule {
	var rules []MerchantRule
	for _, g := range groups {
		for _, p := range g.patterns {
			rules = append(rules, MerchantRule{Pattern: p, Name: p, Category: g.category})
		}
	}
	return rules
}

// DefaultMerchantRules returns a copy of the curated merchant table.
func DefaultMerchantRules() []MerchantRule {
	return merchantTable(merchantGroups)
}
