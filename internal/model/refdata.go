package model

// Static reference data served to the form editor. The values are the
// service's canonical (Persian) strings; they are wire values, not labels.

// Activity variants with special behavior.
const (
	// ActivityExport switches the location fields to country + optional image.
	ActivityExport = "صادرات"
	// ActivityVIP waives phone/activity/location requirements and unlocks the
	// A+ gift.
	ActivityVIP = "مدیریت VIP"
)

// Gender values accepted by the backend.
const (
	GenderMale   = "آقا"
	GenderFemale = "خانم"
)

var Genders = []string{GenderMale, GenderFemale}

// Activities lists the selectable activity types, in display order.
var Activities = []string{
	"نماینده فعلی شرکت",
	"درخواست نمایندگی",
	"پروژه (سازنده)",
	"طراح (آرشیتکت)",
	ActivityExport,
	"خدمات پس از فروش (تکنسین یا مجری)",
	"تامین کننده",
	"مصرف کننده",
	"سایر",
	ActivityVIP,
}

// NeedOptions is the fixed catalog of requestable items.
var NeedOptions = []string{
	"کاتالوگ",
	"لیست قیمت",
	"کارت ویزیت",
	"نمونه محصول",
	"فرم درخواست نمایندگی",
	"برگزاری جلسه حضوری و مذاکره",
}

// Province is one selectable province (value is the stable key sent on the
// wire, label the display string).
type Province struct {
	Value string
	Label string
}

var Provinces = []Province{
	{Value: "azarbayjan-sharghi", Label: "استان آذربایجان شرقی"},
	{Value: "azarbayjan-gharbi", Label: "استان آذربایجان غربی"},
	{Value: "ardebil", Label: "استان اردبیل"},
	{Value: "esfahan", Label: "استان اصفهان"},
	{Value: "alborz", Label: "استان البرز"},
	{Value: "ilam", Label: "استان ایلام"},
	{Value: "bushehr", Label: "استان بوشهر"},
	{Value: "tehran", Label: "استان تهران"},
	{Value: "chaharmahal-bakhtiari", Label: "استان چهارمحال و بختیاری"},
	{Value: "khorasan-jonubi", Label: "استان خراسان جنوبی"},
	{Value: "khorasan-razavi", Label: "استان خراسان رضوی"},
	{Value: "khorasan-shomali", Label: "استان خراسان شمالی"},
	{Value: "khuzestan", Label: "استان خوزستان"},
	{Value: "zanjan", Label: "استان زنجان"},
	{Value: "semnan", Label: "استان سمنان"},
	{Value: "sistan-baluchestan", Label: "استان سیستان و بلوچستان"},
	{Value: "fars", Label: "استان فارس"},
	{Value: "qazvin", Label: "استان قزوین"},
	{Value: "qom", Label: "استان قم"},
	{Value: "kordestan", Label: "استان کردستان"},
	{Value: "kerman", Label: "استان کرمان"},
	{Value: "kermanshah", Label: "استان کرمانشاه"},
	{Value: "kohgiluyeh-boyer-ahmad", Label: "استان کهگیلویه و بویراحمد"},
	{Value: "golestan", Label: "استان گلستان"},
	{Value: "gilan", Label: "استان گیلان"},
	{Value: "lorestan", Label: "استان لرستان"},
	{Value: "mazandaran", Label: "استان مازندران"},
	{Value: "markazi", Label: "استان مرکزی"},
	{Value: "hormozgan", Label: "استان هرمزگان"},
	{Value: "hamedan", Label: "استان همدان"},
	{Value: "yazd", Label: "استان یزد"},
}

// GiftDef describes one gift input.
type GiftDef struct {
	Key     string
	Label   string
	VIPOnly bool
}

// GiftDefs lists the fixed gift keys in display order. giftAPlus is only
// editable when the activity is ActivityVIP.
var GiftDefs = []GiftDef{
	{Key: "giftAPlus", Label: "A+", VIPOnly: true},
	{Key: "giftA", Label: "A"},
	{Key: "giftB", Label: "B"},
	{Key: "giftService", Label: "service"},
	{Key: "giftChild", Label: "child"},
	{Key: "food", Label: "food"},
}

// EmptyGifts returns a gift map with every known key blank.
func EmptyGifts() map[string]string {
	g := make(map[string]string, len(GiftDefs))
	for _, def := range GiftDefs {
		g[def.Key] = ""
	}
	return g
}
