package password

// wordlist feeds passphrase generation. 256 short common words: each draw
// contributes exactly 8 bits, so a six-word passphrase carries 48 bits
// before the separator and capitalization choices.
var wordlist = []string{
	"acid", "acorn", "actor", "adobe", "aged", "agent", "alarm", "album",
	"alley", "aloe", "alpha", "amber", "angle", "ankle", "apple", "apron",
	"arena", "argon", "armor", "aroma", "arrow", "aspen", "atlas", "atom",
	"attic", "audio", "autumn", "avid", "axis", "bacon", "badge", "bagel",
	"baker", "balsa", "bamboo", "banjo", "barge", "basil", "baton", "beach",
	"bead", "beam", "bean", "bear", "beet", "bell", "belt", "bench",
	"berry", "bike", "birch", "bison", "blade", "blaze", "blend", "bloom",
	"bluff", "board", "boat", "bolt", "bonus", "book", "boost", "booth",
	"bound", "box", "brain", "brand", "brass", "brave", "bread", "brick",
	"bride", "brief", "brisk", "broad", "brook", "broom", "brush", "buck",
	"buddy", "budge", "bugle", "bulb", "bulk", "bunch", "bunny", "burst",
	"cabin", "cable", "cacao", "cactus", "cadet", "cake", "camel", "cameo",
	"canal", "candy", "canoe", "cape", "cargo", "carol", "carve", "cedar",
	"cello", "chalk", "charm", "chart", "chess", "chest", "chief", "chill",
	"chime", "chip", "choir", "chord", "chrome", "cider", "cigar", "civic",
	"clamp", "clash", "clasp", "clay", "clean", "clerk", "cliff", "climb",
	"cloak", "clock", "cloth", "cloud", "clover", "coach", "coast", "cobalt",
	"cocoa", "coil", "comet", "coral", "cove", "crabs", "craft", "crane",
	"crate", "creek", "crepe", "crest", "crisp", "crow", "crumb", "crust",
	"cubic", "cupid", "curb", "curl", "curve", "cycle", "daily", "dairy",
	"daisy", "dance", "dandy", "dart", "dawn", "dean", "debut", "decal",
	"decor", "deed", "delta", "denim", "depth", "derby", "desk", "dial",
	"diary", "dice", "diner", "dingo", "dome", "donor", "dove", "dozen",
	"draft", "drama", "dream", "drift", "drill", "drum", "dune", "dusk",
	"eager", "eagle", "early", "earth", "easel", "echo", "edge", "eel",
	"elbow", "elder", "elk", "elm", "ember", "emit", "empty", "envoy",
	"epoch", "equal", "era", "essay", "ethic", "evoke", "exact", "exile",
	"fable", "facet", "fairy", "falcon", "fancy", "fauna", "feast", "fence",
	"fern", "ferry", "fiber", "fifty", "filter", "fjord", "flair", "flame",
	"flask", "fleet", "flint", "flora", "fluff", "flute", "foam", "focal",
	"forge", "forum", "fossil", "fox", "frame", "fresh", "frost", "fruit",
	"fudge", "fungi", "funnel", "gala", "gamma", "gauge", "gazebo", "gecko",
}
