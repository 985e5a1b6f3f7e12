package rng

// Generator provides a simple random number
type Generator interface {
	// Intn will return a random number up to but not including n
	Intn(n int) int

	// Seed will return a positive value suitable for seeding a shuffle
	Seed() int64
}
