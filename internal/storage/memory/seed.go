package memory

type seedFood struct {
	name     string
	category string
	kcal     float64
}

var defaultCategories = []string{"Starches", "Proteins", "Vegetables", "Sides", "Other"}

// kcal per 100 g, raw weight
var defaultFoods = []seedFood{
	{"Basmati rice", "Starches", 350},
	{"Whole wheat pasta", "Starches", 348},
	{"Sweet potato", "Starches", 86},
	{"Quinoa", "Starches", 368},
	{"Raw chicken breast", "Proteins", 120},
	{"Salmon fillet", "Proteins", 208},
	{"Eggs", "Proteins", 143},
	{"Lean ground beef 5%", "Proteins", 137},
	{"Broccoli", "Vegetables", 34},
	{"Green beans", "Vegetables", 31},
	{"Zucchini", "Vegetables", 17},
	{"Spinach", "Vegetables", 23},
	{"Olive oil", "Sides", 884},
	{"Butter", "Sides", 717},
	{"Grated parmesan", "Sides", 392},
	{"Sparkling water", "Other", 0},
}
