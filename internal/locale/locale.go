// Package locale holds the per-language pattern banks consumed by the
// tokenizer and the extractors, plus statement language detection.
//
// Each supported language gets one Patterns record: a typed map from concern
// (month names, trip headers, requalification phrases, source categories,
// balance labels) to its ordered keyword lists. All keywords are stored
// lowercase; matching is done against lowercased line text.
package locale

import "strings"

// Language identifies one supported statement language.
type Language string

const (
	English    Language = "en"
	Dutch      Language = "nl"
	French     Language = "fr"
	German     Language = "de"
	Spanish    Language = "es"
	Portuguese Language = "pt"
	Italian    Language = "it"
)

// Supported lists all statement languages. English is first and acts as the
// default when detection finds no signal or ties.
var Supported = []Language{English, Dutch, French, German, Spanish, Portuguese, Italian}

// SourceCategory names a miles-earning bucket. The values mirror the source
// buckets of the monthly miles record.
type SourceCategory string

const (
	SourceSubscription SourceCategory = "subscription"
	SourceCreditCard   SourceCategory = "creditCard"
	SourceHotel        SourceCategory = "hotel"
	SourceTransfer     SourceCategory = "transfer"
	SourcePromo        SourceCategory = "promo"
	SourcePurchased    SourceCategory = "purchased"
)

// SourcePattern binds one category to its ordered keyword list. Within a
// bank, the first pattern whose keyword occurs in a line wins.
type SourcePattern struct {
	Category SourceCategory
	Keywords []string
}

// XPCategory names a bonus-XP source.
type XPCategory string

const (
	XPSaf         XPCategory = "saf"
	XPCreditCard  XPCategory = "creditCard"
	XPHotel       XPCategory = "hotel"
	XPFirstFlight XPCategory = "firstFlight"
	XPPromo       XPCategory = "promo"
)

// XPPattern binds one XP category to its ordered keyword list.
type XPPattern struct {
	Category XPCategory
	Keywords []string
}

// BalanceLabels holds the per-language labels the balance extractor falls
// back to when the combined summary pattern is absent.
type BalanceLabels struct {
	Miles []string
	XP    []string
	UXP   []string
}

// Patterns is the full pattern bank for one language.
type Patterns struct {
	Language Language

	// MonthNames maps lowercase month names and abbreviations to 1..12.
	MonthNames map[string]int

	// DistinctMonths are abbreviations that identify this language with high
	// confidence during detection (e.g. "mrt" only occurs in Dutch).
	DistinctMonths []string

	// TripHeaders are the phrases that open a multi-segment trip block.
	TripHeaders []string

	// Requalification are the phrases announcing a status level change.
	Requalification []string

	// MilesSources is the ordered category table for monthly miles lines.
	MilesSources []SourcePattern

	// XPSources is the ordered category table for bonus-XP lines.
	XPSources []XPPattern

	// Balance holds the balance-label fallbacks.
	Balance BalanceLabels

	// Keywords are common statement words used for frequency-based language
	// detection.
	Keywords []string
}

func months(pairs map[string]int) map[string]int { return pairs }

var banks = map[Language]*Patterns{
	English: {
		Language: English,
		MonthNames: months(map[string]int{
			"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
			"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
			"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
			"sep": 9, "sept": 9, "oct": 10, "nov": 11, "dec": 12,
		}),
		DistinctMonths:  []string{"january", "february", "october", "december"},
		TripHeaders:     []string{"trip to", "flight to", "your flight", "flight from"},
		Requalification: []string{"congratulations", "you have reached", "welcome to", "requalification"},
		MilesSources: []SourcePattern{
			{SourcePurchased, []string{"purchase of miles", "miles purchase", "buy miles"}},
			{SourceSubscription, []string{"subscription"}},
			{SourceCreditCard, []string{"credit card", "creditcard", "american express", "amex", "mastercard", "visa"}},
			{SourceHotel, []string{"hotel", "accor", "booking.com", "marriott"}},
			{SourceTransfer, []string{"transfer"}},
			{SourcePromo, []string{"promotion", "promo"}},
		},
		XPSources: []XPPattern{
			{XPSaf, []string{"sustainable aviation fuel", "sustainable fuel", "saf"}},
			{XPFirstFlight, []string{"first flight"}},
			{XPCreditCard, []string{"credit card", "american express", "amex"}},
			{XPHotel, []string{"hotel"}},
			{XPPromo, []string{"promotion", "promo"}},
		},
		Balance: BalanceLabels{
			Miles: []string{"miles balance", "mileage balance"},
			XP:    []string{"xp counter", "xp balance", "experience points"},
			UXP:   []string{"uxp counter", "uxp balance", "ultimate xp"},
		},
		Keywords: []string{"flight", "earned", "balance", "statement", "with", "from", "your"},
	},

	Dutch: {
		Language: Dutch,
		MonthNames: months(map[string]int{
			"januari": 1, "februari": 2, "maart": 3, "april": 4, "mei": 5, "juni": 6,
			"juli": 7, "augustus": 8, "september": 9, "oktober": 10, "november": 11, "december": 12,
			"jan": 1, "feb": 2, "mrt": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
			"sep": 9, "okt": 10, "nov": 11, "dec": 12,
		}),
		DistinctMonths:  []string{"mrt", "mei", "okt", "maart", "oktober"},
		TripHeaders:     []string{"reis naar", "vlucht naar", "uw vlucht", "je vlucht"},
		Requalification: []string{"gefeliciteerd", "bereikt", "welkom bij", "herkwalificatie"},
		MilesSources: []SourcePattern{
			{SourcePurchased, []string{"aankoop van miles", "miles gekocht", "aankoop"}},
			{SourceSubscription, []string{"abonnement"}},
			{SourceCreditCard, []string{"creditcard", "credit card", "american express", "amex"}},
			{SourceHotel, []string{"hotel", "accor"}},
			{SourceTransfer, []string{"overboeking", "overdracht", "transfer"}},
			{SourcePromo, []string{"promotie", "actie", "promo"}},
		},
		XPSources: []XPPattern{
			{XPSaf, []string{"duurzame vliegtuigbrandstof", "duurzame brandstof", "saf"}},
			{XPFirstFlight, []string{"eerste vlucht"}},
			{XPCreditCard, []string{"creditcard", "american express", "amex"}},
			{XPHotel, []string{"hotel"}},
			{XPPromo, []string{"promotie", "promo"}},
		},
		Balance: BalanceLabels{
			Miles: []string{"milessaldo", "miles-saldo", "saldo"},
			XP:    []string{"xp-teller", "xp teller", "xp-saldo"},
			UXP:   []string{"uxp-teller", "uxp teller", "uxp-saldo"},
		},
		Keywords: []string{"vlucht", "verdiend", "saldo", "overzicht", "naar", "van", "uw"},
	},

	French: {
		Language: French,
		MonthNames: months(map[string]int{
			"janvier": 1, "février": 2, "fevrier": 2, "mars": 3, "avril": 4, "mai": 5,
			"juin": 6, "juillet": 7, "août": 8, "aout": 8, "septembre": 9, "octobre": 10,
			"novembre": 11, "décembre": 12, "decembre": 12,
			"janv": 1, "févr": 2, "fevr": 2, "avr": 4, "juil": 7, "sept": 9,
			"oct": 10, "nov": 11, "déc": 12,
		}),
		DistinctMonths:  []string{"janv", "févr", "août", "déc", "janvier", "février"},
		TripHeaders:     []string{"voyage à", "vol vers", "votre vol", "vol pour"},
		Requalification: []string{"félicitations", "vous avez atteint", "bienvenue", "requalification"},
		MilesSources: []SourcePattern{
			{SourcePurchased, []string{"achat de miles", "achat"}},
			{SourceSubscription, []string{"abonnement"}},
			{SourceCreditCard, []string{"carte de crédit", "carte bancaire", "carte", "american express", "amex"}},
			{SourceHotel, []string{"hôtel", "hotel", "accor"}},
			{SourceTransfer, []string{"transfert"}},
			{SourcePromo, []string{"promotion", "promo"}},
		},
		XPSources: []XPPattern{
			{XPSaf, []string{"carburant d'aviation durable", "carburant durable", "saf"}},
			{XPFirstFlight, []string{"premier vol"}},
			{XPCreditCard, []string{"carte", "american express", "amex"}},
			{XPHotel, []string{"hôtel", "hotel"}},
			{XPPromo, []string{"promotion", "promo"}},
		},
		Balance: BalanceLabels{
			Miles: []string{"solde de miles", "solde miles", "solde"},
			XP:    []string{"compteur xp", "solde xp"},
			UXP:   []string{"compteur uxp", "solde uxp"},
		},
		Keywords: []string{"vol", "solde", "relevé", "votre", "vers", "avec", "gagnés"},
	},

	German: {
		Language: German,
		MonthNames: months(map[string]int{
			"januar": 1, "februar": 2, "märz": 3, "marz": 3, "april": 4, "mai": 5,
			"juni": 6, "juli": 7, "august": 8, "september": 9, "oktober": 10,
			"november": 11, "dezember": 12,
			"jan": 1, "feb": 2, "mär": 3, "apr": 4, "jun": 6, "jul": 7, "aug": 8,
			"sep": 9, "okt": 10, "nov": 11, "dez": 12,
		}),
		DistinctMonths:  []string{"märz", "mär", "dez", "dezember", "januar"},
		TripHeaders:     []string{"reise nach", "flug nach", "ihr flug", "dein flug"},
		Requalification: []string{"glückwunsch", "erreicht", "willkommen", "requalifizierung"},
		MilesSources: []SourcePattern{
			{SourcePurchased, []string{"kauf von miles", "meilenkauf", "kauf"}},
			{SourceSubscription, []string{"abonnement", "abo"}},
			{SourceCreditCard, []string{"kreditkarte", "american express", "amex"}},
			{SourceHotel, []string{"hotel", "accor"}},
			{SourceTransfer, []string{"übertragung", "transfer"}},
			{SourcePromo, []string{"aktion", "promotion", "promo"}},
		},
		XPSources: []XPPattern{
			{XPSaf, []string{"nachhaltiger flugkraftstoff", "nachhaltigem", "saf"}},
			{XPFirstFlight, []string{"erster flug"}},
			{XPCreditCard, []string{"kreditkarte", "american express", "amex"}},
			{XPHotel, []string{"hotel"}},
			{XPPromo, []string{"aktion", "promo"}},
		},
		Balance: BalanceLabels{
			Miles: []string{"meilenstand", "miles-stand", "kontostand"},
			XP:    []string{"xp-zähler", "xp zähler", "xp-stand"},
			UXP:   []string{"uxp-zähler", "uxp zähler", "uxp-stand"},
		},
		Keywords: []string{"flug", "gesammelt", "übersicht", "nach", "ihr", "mit", "meilen"},
	},

	Spanish: {
		Language: Spanish,
		MonthNames: months(map[string]int{
			"enero": 1, "febrero": 2, "marzo": 3, "abril": 4, "mayo": 5, "junio": 6,
			"julio": 7, "agosto": 8, "septiembre": 9, "octubre": 10, "noviembre": 11, "diciembre": 12,
			"ene": 1, "feb": 2, "mar": 3, "abr": 4, "may": 5, "jun": 6, "jul": 7,
			"ago": 8, "sep": 9, "sept": 9, "oct": 10, "nov": 11, "dic": 12,
		}),
		DistinctMonths:  []string{"ene", "dic", "enero", "diciembre", "mayo"},
		TripHeaders:     []string{"viaje a", "vuelo a", "su vuelo", "tu vuelo"},
		Requalification: []string{"felicidades", "has alcanzado", "bienvenido", "recalificación"},
		MilesSources: []SourcePattern{
			{SourcePurchased, []string{"compra de miles", "compra de millas", "compra"}},
			{SourceSubscription, []string{"suscripción", "suscripcion"}},
			{SourceCreditCard, []string{"tarjeta de crédito", "tarjeta", "american express", "amex"}},
			{SourceHotel, []string{"hotel", "accor"}},
			{SourceTransfer, []string{"transferencia"}},
			{SourcePromo, []string{"promoción", "promocion", "promo"}},
		},
		XPSources: []XPPattern{
			{XPSaf, []string{"combustible de aviación sostenible", "combustible sostenible", "saf"}},
			{XPFirstFlight, []string{"primer vuelo"}},
			{XPCreditCard, []string{"tarjeta", "american express", "amex"}},
			{XPHotel, []string{"hotel"}},
			{XPPromo, []string{"promoción", "promo"}},
		},
		Balance: BalanceLabels{
			Miles: []string{"saldo de miles", "saldo de millas", "saldo"},
			XP:    []string{"contador de xp", "saldo de xp"},
			UXP:   []string{"contador de uxp", "saldo de uxp"},
		},
		Keywords: []string{"vuelo", "saldo", "resumen", "hacia", "con", "ganadas", "millas"},
	},

	Portuguese: {
		Language: Portuguese,
		MonthNames: months(map[string]int{
			"janeiro": 1, "fevereiro": 2, "março": 3, "marco": 3, "abril": 4, "maio": 5,
			"junho": 6, "julho": 7, "agosto": 8, "setembro": 9, "outubro": 10,
			"novembro": 11, "dezembro": 12,
			"jan": 1, "fev": 2, "mar": 3, "abr": 4, "mai": 5, "jun": 6, "jul": 7,
			"ago": 8, "set": 9, "out": 10, "nov": 11, "dez": 12,
		}),
		DistinctMonths:  []string{"fev", "out", "janeiro", "outubro", "fevereiro"},
		TripHeaders:     []string{"viagem para", "voo para", "seu voo", "o seu voo"},
		Requalification: []string{"parabéns", "atingiu", "bem-vindo", "requalificação"},
		MilesSources: []SourcePattern{
			{SourcePurchased, []string{"compra de miles", "compra de milhas", "compra"}},
			{SourceSubscription, []string{"assinatura"}},
			{SourceCreditCard, []string{"cartão de crédito", "cartao de credito", "cartão", "american express", "amex"}},
			{SourceHotel, []string{"hotel", "accor"}},
			{SourceTransfer, []string{"transferência", "transferencia"}},
			{SourcePromo, []string{"promoção", "promocao", "promo"}},
		},
		XPSources: []XPPattern{
			{XPSaf, []string{"combustível de aviação sustentável", "combustível sustentável", "saf"}},
			{XPFirstFlight, []string{"primeiro voo"}},
			{XPCreditCard, []string{"cartão", "american express", "amex"}},
			{XPHotel, []string{"hotel"}},
			{XPPromo, []string{"promoção", "promo"}},
		},
		Balance: BalanceLabels{
			Miles: []string{"saldo de miles", "saldo de milhas", "saldo"},
			XP:    []string{"contador de xp", "saldo de xp"},
			UXP:   []string{"contador de uxp", "saldo de uxp"},
		},
		Keywords: []string{"voo", "saldo", "extrato", "para", "com", "ganhas", "milhas"},
	},

	Italian: {
		Language: Italian,
		MonthNames: months(map[string]int{
			"gennaio": 1, "febbraio": 2, "marzo": 3, "aprile": 4, "maggio": 5, "giugno": 6,
			"luglio": 7, "agosto": 8, "settembre": 9, "ottobre": 10, "novembre": 11, "dicembre": 12,
			"gen": 1, "feb": 2, "mar": 3, "apr": 4, "mag": 5, "giu": 6, "lug": 7,
			"ago": 8, "set": 9, "ott": 10, "nov": 11, "dic": 12,
		}),
		DistinctMonths:  []string{"gen", "ott", "mag", "giu", "lug", "gennaio", "ottobre"},
		TripHeaders:     []string{"viaggio a", "volo per", "il tuo volo", "suo volo"},
		Requalification: []string{"congratulazioni", "hai raggiunto", "benvenuto", "riqualificazione"},
		MilesSources: []SourcePattern{
			{SourcePurchased, []string{"acquisto di miles", "acquisto di miglia", "acquisto"}},
			{SourceSubscription, []string{"abbonamento"}},
			{SourceCreditCard, []string{"carta di credito", "carta", "american express", "amex"}},
			{SourceHotel, []string{"hotel", "accor"}},
			{SourceTransfer, []string{"trasferimento"}},
			{SourcePromo, []string{"promozione", "promo"}},
		},
		XPSources: []XPPattern{
			{XPSaf, []string{"carburante sostenibile per l'aviazione", "carburante sostenibile", "saf"}},
			{XPFirstFlight, []string{"primo volo"}},
			{XPCreditCard, []string{"carta", "american express", "amex"}},
			{XPHotel, []string{"hotel"}},
			{XPPromo, []string{"promozione", "promo"}},
		},
		Balance: BalanceLabels{
			Miles: []string{"saldo miglia", "saldo miles", "saldo"},
			XP:    []string{"contatore xp", "saldo xp"},
			UXP:   []string{"contatore uxp", "saldo uxp"},
		},
		Keywords: []string{"volo", "saldo", "estratto", "verso", "con", "guadagnate", "miglia"},
	},
}

// Get returns the pattern bank for the given language. Unknown languages
// fall back to English.
func Get(lang Language) *Patterns {
	if p, ok := banks[lang]; ok {
		return p
	}
	return banks[English]
}

// All returns every pattern bank in Supported order.
func All() []*Patterns {
	out := make([]*Patterns, 0, len(Supported))
	for _, lang := range Supported {
		out = append(out, banks[lang])
	}
	return out
}

// MonthNumber matches a token against this language's month table.
func (p *Patterns) MonthNumber(token string) (int, bool) {
	n, ok := p.MonthNames[strings.ToLower(strings.TrimSpace(token))]
	return n, ok
}

// MonthNumberAny matches a token against every language's month table, in
// Supported order. Used as the fallback when the active language's table has
// no entry.
func MonthNumberAny(token string) (int, bool) {
	for _, lang := range Supported {
		if n, ok := banks[lang].MonthNumber(token); ok {
			return n, true
		}
	}
	return 0, false
}
