package ruleset

// Quest-target tables. These mirror the base ruleset; a modded game would
// load them from data files, which is out of scope here.

// Wonders that construct-wonder quests may target.
var Wonders = []string{
	"Stonehenge",
	"The Great Library",
	"The Pyramids",
	"The Colossus",
	"The Hanging Gardens",
	"The Oracle",
	"Notre Dame",
	"The Porcelain Tower",
}

// Resources that connect-resource quests may target.
var Resources = []string{
	"Iron",
	"Horses",
	"Ivory",
	"Silk",
	"Spices",
	"Gems",
	"Marble",
	"Wine",
}

// GreatPeople that acquire-great-person quests may target.
var GreatPeople = []string{
	"Great Artist",
	"Great Engineer",
	"Great General",
	"Great Merchant",
	"Great Scientist",
}

// NaturalWonders placed on maps; find-natural-wonder quests target these.
var NaturalWonders = []string{
	"Barringer Crater",
	"The Great Barrier Reef",
	"Mount Fuji",
	"Old Faithful",
	"Rock of Gibraltar",
}
