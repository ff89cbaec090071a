package content

import (
	"context"
	"math/rand/v2"
)

// Default phrase banks. Titles and descriptions are drawn independently;
// there is no pairing between the lists beyond shared register.
var (
	defaultTitles = []string{
		"Jeg trodde pushups var noe man kjøper på Rema.",
		"Det er ikke kroppen min som sliter, det er sjela.",
		"Det ser flatt ut på kartet, men kartet lyver!",
		"Jeg meldte meg på for utsikten, ikke for å dø.",
		"Dette er ikke tur – dette er terapi med bakker.",
		"Beina sa nei, kalenderen sa dessverre ja.",
		"Ny pers i å angre underveis.",
		"Garmin kaller det trening. Jeg kaller det hevn.",
	}

	defaultDescriptions = []string{
		"Forventningsavvik mellom produkt og aktivitet dokumentert. Ingen videre oppfølging nødvendig.",
		"Subjektiv opplevelse av utmattelse registrert. Fysisk kapasitet vurderes som tilfredsstillende.",
		"Avvik mellom kartgrunnlag og faktisk høydeprofil bekreftet.",
		"Forventningsavvik mellom motivasjon og terreng dokumentert. Saken anses lukket.",
		"Tiltaket klassifiseres som egeninitiert rehabilitering med fysisk komponent.",
		"Gjennomføringen avviker ikke vesentlig fra plan. Humøret gjør det.",
		"Aktiviteten er gjennomført under protest. Protesten er tatt til etterretning.",
		"Puls og tempo innenfor normalområdet. Viljen utenfor.",
	}
)

// StaticBank selects a title and a description by independent uniform draws
// from two fixed lists.
type StaticBank struct {
	titles       []string
	descriptions []string
	intn         func(int) int
}

// NewStaticBank creates a bank over the default phrase lists.
func NewStaticBank() *StaticBank {
	return NewStaticBankFrom(defaultTitles, defaultDescriptions)
}

// NewStaticBankFrom creates a bank over the given lists. Both lists must be
// non-empty.
func NewStaticBankFrom(titles, descriptions []string) *StaticBank {
	return &StaticBank{
		titles:       titles,
		descriptions: descriptions,
		intn:         rand.IntN,
	}
}

// Pick returns a fresh Pair; the activity stats are unused in static mode.
func (b *StaticBank) Pick(ctx context.Context, stats Stats) Pair {
	return Pair{
		Title:       b.titles[b.intn(len(b.titles))],
		Description: b.descriptions[b.intn(len(b.descriptions))],
	}
}
