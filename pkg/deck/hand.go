package deck

// Hand represents a collection of cards
type Hand []*Card

// AddCard adds a card to the hand
func (h *Hand) AddCard(card *Card) {
	*h = append(*h, card)
}

// HasCard returns true if the hand contains the specified card
func (h *Hand) HasCard(card *Card) bool {
	for _, c := range *h {
		if c.Equal(card) {
			return true
		}
	}

	return false
}

// Discard will discard the specified card and return the number of cards removed
func (h *Hand) Discard(card *Card) int {
	count := 0
	newHand := make([]*Card, 0, len(*h))
	for _, c := range *h {
		if c.Equal(card) && count == 0 {
			count++
		} else {
			newHand = append(newHand, c)
		}
	}

	*h = newHand
	return count
}

func (h Hand) String() string {
	return CardsToString(h)
}

// Clone returns a clone of the hand
func (h Hand) Clone() Hand {
	h2 := make(Hand, len(h))
	copy(h2, h)

	return h2
}
