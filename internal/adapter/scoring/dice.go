package scoring

// Dice returns the Dice coefficient of the character bigrams of a and b:
// 2*|shared| / (|bigrams(a)| + |bigrams(b)|), counting repeated bigrams.
// Strings without a shared bigram score 0.
func Dice(a, b string) float64 {
	if a == b && len([]rune(a)) > 1 {
		return 1
	}
	ba, bb := bigrams(a), bigrams(b)
	total := len(ba) + len(bb)
	if total == 0 {
		return 0
	}

	counts := make(map[[2]rune]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}
	shared := 0
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			shared++
		}
	}
	return 2 * float64(shared) / float64(total)
}

func bigrams(s string) [][2]rune {
	r := []rune(s)
	if len(r) < 2 {
		return nil
	}
	out := make([][2]rune, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		out = append(out, [2]rune{r[i], r[i+1]})
	}
	return out
}
