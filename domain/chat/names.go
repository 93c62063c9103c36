package chat

import (
	"math/rand/v2"
	"strconv"
)

// maxSuffixAttempts bounds the composite-name fallback. Hitting the cap
// yields ErrNamePoolExhausted rather than spinning on an almost-full
// suffix space.
const maxSuffixAttempts = 64

// namePool is the fixed set of candidate display names handed out to
// sessions. Composite names (pool entry + numeric suffix) are minted
// once every pool entry is claimed.
var namePool = []string{
	"Andromeda", "Antares", "Aquila", "Auriga", "Betelgeuse", "Callisto",
	"Capella", "Cassiopeia", "Centauri", "Cepheus", "Ceres", "Columba",
	"Cygnus", "Deneb", "Draco", "Electra", "Eris", "Europa", "Fornax",
	"Ganymede", "Halley", "Hydra", "Io", "Juno", "Kepler", "Lacerta",
	"Luna", "Lyra", "Meteor", "Mira", "Nebula", "Nova", "Oberon",
	"Orion", "Pavo", "Pegasus", "Perseus", "Phoenix", "Polaris",
	"Proxima", "Pulsar", "Quasar", "Rigel", "Sagitta", "Sirius",
	"Titania", "Triton", "Vega",
}

// AllocateName picks a display name absent from assigned, the set of
// names currently bound to any live session. Once the pool is exhausted
// it falls back to a random pool entry with a numeric suffix, retrying
// up to maxSuffixAttempts before reporting exhaustion. Pure function of
// its input; no state is retained.
func AllocateName(assigned map[string]struct{}) (string, error) {
	for _, i := range rand.Perm(len(namePool)) {
		if _, taken := assigned[namePool[i]]; !taken {
			return namePool[i], nil
		}
	}

	for attempt := 0; attempt < maxSuffixAttempts; attempt++ {
		candidate := namePool[rand.IntN(len(namePool))] + strconv.Itoa(rand.IntN(10000))
		if _, taken := assigned[candidate]; !taken {
			return candidate, nil
		}
	}

	return "", ErrNamePoolExhausted
}

// PoolSize reports how many base names the pool holds.
func PoolSize() int {
	return len(namePool)
}
