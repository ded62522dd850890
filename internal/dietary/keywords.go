package dietary

// KeywordSetVersion identifies the revision of the keyword lists below.
// Bump it whenever a list changes so stored classifications can be traced
// back to the lists that produced them.
const KeywordSetVersion = "2"

// Category is a restricted ingredient family.
type Category string

// Restricted ingredient families.
const (
	Meat   Category = "meat"
	Dairy  Category = "dairy"
	Gluten Category = "gluten"
	Nuts   Category = "nuts"
)

// Categories lists every category in evaluation order.
var Categories = []Category{Meat, Dairy, Gluten, Nuts}

// Keywords returns a copy of the keyword list for a category.
func Keywords(c Category) []string {
	return append([]string(nil), keywordSets[c]...)
}

var keywordSets = map[Category][]string{
	Meat:   meatKeywords,
	Dairy:  dairyKeywords,
	Gluten: glutenKeywords,
	Nuts:   nutKeywords,
}

// Matching is substring based, so short entries such as "ham" or "leg" also
// hit words that merely contain them ("graham", "legume"). The lists favour
// recall over precision.

var meatKeywords = []string{
	// common meats
	"beef", "chicken", "pork", "lamb", "turkey", "duck", "goose", "rabbit",
	"venison", "veal", "mutton", "goat", "meat", "steak", "ground beef",

	// cuts
	"oxtail", "ribs", "brisket", "chuck", "sirloin", "tenderloin", "flank",
	"drumstick", "thigh", "breast", "wing", "leg", "shoulder", "loin",

	// processed
	"bacon", "ham", "sausage", "salami", "pepperoni", "prosciutto",
	"pancetta", "chorizo", "pastrami", "corned beef", "hot dog", "bratwurst",
	"mortadella", "capicola", "bresaola", "kielbasa",

	// seafood and fish
	"fish", "salmon", "tuna", "cod", "halibut", "tilapia", "sea bass", "trout",
	"mackerel", "sardine", "anchovy", "herring", "sole", "flounder", "snapper",
	"shrimp", "crab", "lobster", "scallop", "mussel", "clam", "oyster",
	"squid", "octopus", "calamari", "prawns", "crawfish", "crayfish",

	// poultry
	"chicken breast", "chicken thigh", "chicken wing", "whole chicken",
	"turkey breast", "ground turkey", "duck breast", "duck leg",

	// game and offal
	"liver", "kidney", "heart", "tongue", "brain", "sweetbread", "tripe",
	"blood sausage", "boudin", "haggis",

	// stocks and broths
	"chicken stock", "beef stock", "bone broth", "chicken broth", "beef broth",
	"demi-glace", "meat stock", "fish stock", "seafood stock",
}

var dairyKeywords = []string{
	"milk", "cheese", "butter", "cream", "yogurt", "yoghurt",

	// milk
	"whole milk", "skim milk", "2% milk", "1% milk", "buttermilk",
	"goat milk", "sheep milk", "buffalo milk", "condensed milk",
	"evaporated milk", "powdered milk", "dry milk", "milk powder",

	// cheese
	"cheddar", "mozzarella", "parmesan", "parmigiano", "pecorino",
	"ricotta", "cottage cheese", "cream cheese", "feta", "goat cheese",
	"blue cheese", "brie", "camembert", "swiss", "gruyere", "gouda",
	"provolone", "manchego", "asiago", "gorgonzola", "roquefort",
	"mascarpone", "boursin", "queso", "paneer", "halloumi",

	// cream
	"heavy cream", "whipping cream", "light cream", "half and half",
	"sour cream", "crème fraîche", "whipped cream", "clotted cream",
	"double cream", "single cream",

	// yogurt
	"greek yogurt", "plain yogurt", "vanilla yogurt", "frozen yogurt",
	"kefir", "labneh", "skyr",

	// butter
	"salted butter", "unsalted butter", "clarified butter", "ghee",
	"cultured butter", "butter substitute",

	// frozen
	"ice cream", "gelato", "sorbet", "frozen custard", "sherbet",
	"milkshake", "milk shake",

	// derivatives
	"casein", "whey", "lactose", "milk solids", "milk protein",
	"sodium caseinate", "calcium caseinate", "lactalbumin",
	"lactoglobulin", "milk fat", "butterfat",

	// sauces
	"white sauce", "béchamel", "alfredo", "carbonara sauce",
	"cheese sauce", "cream sauce", "ranch dressing", "caesar dressing",
}

var glutenKeywords = []string{
	// wheat
	"flour", "wheat", "wheat flour", "all-purpose flour", "bread flour",
	"cake flour", "pastry flour", "self-rising flour", "whole wheat",
	"durum wheat", "semolina", "bulgur", "wheat bran", "wheat germ",
	"spelt", "kamut", "einkorn", "emmer", "farro",

	// other grains
	"barley", "rye", "triticale", "malt", "malted barley", "malt extract",
	"malt syrup", "malt vinegar", "malted milk", "beer", "ale", "lager",

	// bread
	"bread", "white bread", "whole grain bread", "sourdough", "bagel",
	"english muffin", "baguette", "ciabatta", "focaccia", "pita",
	"naan", "tortilla", "wrap", "roll", "bun", "croissant", "brioche",
	"breadcrumbs", "bread crumbs", "panko", "croutons",

	// pasta and noodles
	"pasta", "spaghetti", "linguine", "fettuccine", "penne", "rigatoni",
	"macaroni", "fusilli", "farfalle", "ravioli", "tortellini", "gnocchi",
	"lasagna", "noodles", "egg noodles", "ramen", "udon", "soba",
	"couscous", "orzo",

	// baked goods
	"cake", "cookies", "crackers", "muffins", "donuts", "doughnuts",
	"pastry", "pie crust", "pizza dough", "biscuits", "scones",
	"pretzels", "wafers",

	// cereals
	"cereal", "granola", "muesli", "oats", "oatmeal", "rolled oats",
	"steel cut oats", "wheat berries",

	// hidden sources
	"soy sauce", "tamari", "teriyaki", "hoisin sauce", "oyster sauce",
	"worcestershire", "miso", "seitan", "vital wheat gluten",
	"modified food starch", "hydrolyzed wheat protein",
	"textured vegetable protein", "tvp",

	// processed
	"breading", "battered", "tempura", "flour tortilla", "graham crackers",
	"matzo", "communion wafer",
}

var nutKeywords = []string{
	// tree nuts
	"almond", "almonds", "brazil nut", "brazil nuts", "cashew", "cashews",
	"hazelnut", "hazelnuts", "macadamia", "macadamias", "pecan", "pecans",
	"pine nut", "pine nuts", "pistachio", "pistachios", "walnut", "walnuts",
	"chestnut", "chestnuts", "beech nut", "beech nuts", "hickory nut",
	"black walnut", "english walnut",

	// peanuts
	"peanut", "peanuts", "groundnut", "groundnuts", "monkey nut",

	// butters
	"almond butter", "peanut butter", "cashew butter", "hazelnut butter",
	"walnut butter", "pecan butter", "pistachio butter", "tahini",
	"sunflower seed butter", "sunbutter",

	// oils
	"almond oil", "walnut oil", "hazelnut oil", "peanut oil",
	"groundnut oil", "argan oil",

	// flours and meals
	"almond flour", "almond meal", "hazelnut flour", "walnut flour",
	"pecan flour", "chestnut flour", "coconut flour",

	// milks
	"almond milk", "cashew milk", "hazelnut milk", "walnut milk",
	"macadamia milk", "pecan milk", "pistachio milk",

	// coconut
	"coconut", "coconut oil", "coconut milk", "coconut cream",
	"desiccated coconut", "coconut flakes", "coconut butter", "coconut meat",

	// seeds
	"sesame", "sesame seeds", "sesame oil", "sunflower seeds",
	"pumpkin seeds", "poppy seeds", "chia seeds", "flax seeds",
	"hemp seeds",

	// nut products
	"marzipan", "nougat", "praline", "gianduja", "nutella",
	"amaretto", "frangelico", "orgeat",

	// hidden
	"natural flavoring", "artificial flavoring", "nut extract",
	"almond extract", "vanilla extract",
}
