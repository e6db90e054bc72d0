package pkg

import "golang.org/x/exp/rand"

const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandString returns a room code of n characters.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
