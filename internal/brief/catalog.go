package brief

// Option is a catalog entry with a stable id and display copy.
type Option struct {
	ID          string
	Label       string
	Description string
}

// Theme identifies a landing style a visitor can pick. Only what is needed to
// preview the theme is kept here.
type Theme struct {
	ID        string
	Name      string
	Label     string
	Primary   string
	Secondary string
	Dark      bool
}

var Goals = []Option{
	{ID: "sales", Label: "Сату жасау", Description: "Онлайн сату немесе тапсырыс қабылдау"},
	{ID: "info", Label: "Ақпарат беру", Description: "Компания туралы ақпарат орналастыру"},
	{ID: "portfolio", Label: "Портфолио", Description: "Жұмыстарыңызды көрсету"},
	{ID: "booking", Label: "Брондау", Description: "Қызметтерге жазылу"},
}

var Features = []string{
	"Байланыс формасы",
	"Онлайн чат",
	"Галерея",
	"Прайс-лист",
	"Блог",
	"Карта",
	"Әлеуметтік желілер",
	"Тілдерді ауыстыру",
}

var BudgetRanges = []string{
	"50,000 - 100,000 ₸",
	"100,000 - 200,000 ₸",
	"200,000 - 500,000 ₸",
	"500,000+ ₸",
}

var Deadlines = []string{
	"1 апта",
	"2 апта",
	"1 ай",
	"Мерзімі маңызды емес",
}

var BusinessTypes = []string{
	"Кафе / Мейрамхана",
	"Дүкен / Магазин",
	"Сұлулық салоны",
	"Білім беру орталығы",
	"Медициналық орталық",
	"Құрылыс компаниясы",
	"IT компаниясы",
	"Туризм агенттігі",
	"Фитнес клубы",
	"Басқа",
}

func goalIDs() []string {
	ids := make([]string, len(Goals))
	for i, g := range Goals {
		ids[i] = g.ID
	}
	return ids
}

func themeIDs(themes []Theme) []string {
	ids := make([]string, len(themes))
	for i, t := range themes {
		ids[i] = t.ID
	}
	return ids
}
