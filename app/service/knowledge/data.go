package knowledge

// Chunk is one pre-embedded knowledge base fragment returned by a
// similarity search, ordered by ascending Distance.
type Chunk struct {
	Source   string
	Text     string
	Distance float64
}
