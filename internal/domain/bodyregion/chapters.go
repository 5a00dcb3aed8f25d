package bodyregion

// chapterRegions maps an ICD-11 code's two-character chapter block to a
// body region, following the WHO chapter structure.
var chapterRegions = map[string]string{
	// Respiratory
	"CA": RegionChest,
	"CB": RegionChest,
	"MD": RegionChest,

	// Digestive
	"DA": RegionAbdomen,
	"DD": RegionAbdomen,
	"DB": RegionAbdomen,

	// Blood, immune and circulatory
	"BA": RegionChest,
	"BB": RegionChest,
	"BC": RegionChest,

	// Nervous system and sense organs
	"8A": RegionHead,
	"8B": RegionHead,
	"9A": RegionHead,
	"9B": RegionHead,

	// Musculoskeletal
	"FA": RegionArms,
	"FB": RegionLegs,
	"FC": RegionLegs,

	// Genitourinary and reproductive
	"GC": RegionPelvis,
	"GA": RegionPelvis,
	"GB": RegionPelvis,

	// Skin, shown on the upper limbs
	"EA": RegionArms,

	// Endocrine and metabolic, shown centrally
	"5A": RegionAbdomen,
}

// regionKeywords holds the Sanskrit and clinical terms that tie a
// NAMASTE display to a region when no ICD chapter evidence exists.
var regionKeywords = map[string][]string{
	RegionHead: {
		"shira", "mastaka", "head", "brain", "cerebr",
		"netra", "akshi", "eye", "vision", "ophthalm",
		"karna", "ear", "hearing",
		"nasika", "nose", "nasal",
		"kantha", "throat", "pharyn",
		"greeva", "neck", "cervical",
		"migraine", "headache", "shirashoola",
	},
	RegionChest: {
		"uras", "hridaya", "heart", "cardiac",
		"phupphusa", "lung", "pulmon", "respirat",
		"shwasa", "breath", "dyspnea",
		"kasa", "cough",
		"chest", "thorax",
	},
	RegionAbdomen: {
		"udara", "amashaya", "stomach", "gastric",
		"yakrit", "liver", "hepat",
		"antra", "intestin", "bowel",
		"pachan", "agni", "digest",
		"vrikka", "kidney", "renal",
		"pliha", "spleen",
		"abdomen", "abdominal",
	},
	RegionPelvis: {
		"kati", "pelvi", "hip",
		"basti", "bladder", "urinary",
		"garbha", "reproduct", "uterus",
		"artava", "menstrual",
		"yoni", "gynecological",
	},
	RegionArms: {
		"bahu", "arm", "upper limb",
		"skandha", "shoulder",
		"karpara", "elbow",
		"manibandha", "wrist",
		"hasta", "hand", "palm",
		"anguli", "finger",
	},
	RegionLegs: {
		"pada", "leg", "lower limb",
		"uru", "thigh", "femor",
		"janu", "knee", "patel",
		"gulpha", "ankle",
		"foot",
		"gridhrasi", "sciatica",
	},
}

// RegionForICDCode classifies an ICD-11 code by its chapter block.
// Returns empty when the chapter has no anatomical home.
func RegionForICDCode(icdCode string) string {
	if len(icdCode) < 2 {
		return ""
	}
	return chapterRegions[icdCode[:2]]
}

// KeywordsForRegion returns the keyword catalog for a region code.
func KeywordsForRegion(code string) []string {
	return regionKeywords[code]
}
