package config

// DefaultTerminalItems are items that are never expanded even though a recipe
// produces them. Most loop back through a block or nugget form; the smithing
// templates duplicate themselves.
var DefaultTerminalItems = []string{
	"coal",
	"coal_block",
	"wheat",
	"diamond",
	"emerald",
	"raw_iron",
	"raw_gold",
	"redstone",
	"blue_wool",
	"packed_mud",
	"raw_copper",
	"iron_ingot",
	"dried_kelp",
	"gold_ingot",
	"slime_ball",
	"black_wool",
	"quartz_slab",
	"copper_ingot",
	"lapis_lazuli",
	"honey_bottle",
	"rib_armor_trim_smithing_template",
	"eye_armor_trim_smithing_template",
	"vex_armor_trim_smithing_template",
	"dune_armor_trim_smithing_template",
	"host_armor_trim_smithing_template",
	"tide_armor_trim_smithing_template",
	"wild_armor_trim_smithing_template",
	"ward_armor_trim_smithing_template",
	"coast_armor_trim_smithing_template",
	"spire_armor_trim_smithing_template",
	"snout_armor_trim_smithing_template",
	"shaper_armor_trim_smithing_template",
	"netherite_upgrade_smithing_template",
	"raiser_armor_trim_smithing_template",
	"sentry_armor_trim_smithing_template",
	"silence_armor_trim_smithing_template",
	"wayfinder_armor_trim_smithing_template",
}

// DefaultAchievableItems are base items an executor can reliably gather.
var DefaultAchievableItems = []string{
	"cobblestone",
	"cobbled_deepslate",
	"dirt",
	"oak_log",
	"stripped_oak_log",
	"spruce_log",
	"stripped_spruce_log",
	"glass",
	"sand",
	"stone",
	"smooth_stone",
	"brick",
	"clay",
	"charcoal",
	"basalt",
	"coal",
	"raw_iron",
	"raw_gold",
	"redstone",
	"raw_copper",
	"iron_ingot",
	"dried_kelp",
	"gold_ingot",
	"slime_ball",
	"black_wool",
	"copper_ingot",
	"lapis_lazuli",
}

const (
	defaultDBPath         = "crafting.db"
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultMaxSearchDepth = 10
	defaultMaxPlanDepth   = 64
	defaultCacheSize      = 4096
)
