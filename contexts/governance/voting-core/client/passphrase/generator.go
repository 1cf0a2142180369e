// Package passphrase manages the voter's commitment secret on the voter's own
// machine. Nothing here is imported by the server.
package passphrase

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"agora/contexts/governance/voting-core/domain/commitment"
)

var adjectives = [32]string{
	"swift", "brave", "calm", "bold", "keen", "wise", "fair", "true",
	"cool", "warm", "soft", "firm", "deep", "pure", "rich", "wild",
	"blue", "gold", "jade", "ruby", "mint", "sage", "rose", "snow",
	"quiet", "bright", "amber", "lucid", "noble", "rapid", "stark", "vivid",
}

var creatures = [32]string{
	"tiger", "eagle", "wolf", "bear", "hawk", "lion", "deer", "fox",
	"otter", "heron", "lynx", "crane", "bison", "raven", "whale", "finch",
	"moose", "viper", "horse", "panda", "koala", "gecko", "mole", "swan",
	"trout", "robin", "camel", "yak", "ibis", "newt", "seal", "wren",
}

var landmarks = [32]string{
	"oak", "pine", "elm", "fern", "reed", "palm", "vine", "moss",
	"river", "storm", "flame", "stone", "wave", "wind", "star", "moon",
	"cliff", "delta", "grove", "marsh", "ridge", "shore", "vale", "dune",
	"glade", "brook", "peak", "cove", "field", "lake", "mesa", "fjord",
}

const digitSpace = 10000

// Combinations is the size of the passphrase space, about 3.3e8.
const Combinations = len(adjectives) * len(creatures) * len(landmarks) * digitSpace

// Generate returns a passphrase such as "swift-tiger-river-4821" drawn from
// crypto/rand.
func Generate() (commitment.Passphrase, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom draws from the given entropy source; tests pass a fixed one.
func GenerateFrom(random io.Reader) (commitment.Passphrase, error) {
	adjective, err := pick(random, len(adjectives))
	if err != nil {
		return commitment.Passphrase{}, err
	}
	creature, err := pick(random, len(creatures))
	if err != nil {
		return commitment.Passphrase{}, err
	}
	landmark, err := pick(random, len(landmarks))
	if err != nil {
		return commitment.Passphrase{}, err
	}
	digits, err := pick(random, digitSpace)
	if err != nil {
		return commitment.Passphrase{}, err
	}
	return commitment.NewPassphrase(fmt.Sprintf("%s-%s-%s-%04d",
		adjectives[adjective], creatures[creature], landmarks[landmark], digits))
}

func pick(random io.Reader, n int) (int, error) {
	value, err := rand.Int(random, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read passphrase entropy: %w", err)
	}
	return int(value.Int64()), nil
}
