package game

// Swap derives the next round's roles from the current ones.
func Swap(r Roles) Roles {
	return Roles{Setter: r.Guesser, Guesser: r.Setter}
}
