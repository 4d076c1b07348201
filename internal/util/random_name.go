package util

import (
	"fmt"
	"whist-server/internal/rng"
)

// random is shared by the HTTP handlers
var random rng.Generator = rng.Crypto{}

var adjectives = []string{
	"Fast", "Slow", "Quick", "Sly", "Lucky", "Bold", "Gracious", "Happy", "Funny", "Clever",
	"Red", "Blue", "Green", "Orange", "Purple", "Fuzzy", "Smiling", "Tall", "Grand", "Ultimate",
	"Trumping", "Calling", "Shuffling", "Dealing", "Bluffing", "Counting",
}

var animals = []string{
	"Dog", "Cat", "Otter", "Fox", "Owl", "Badger", "Hedgehog", "Heron", "Lynx", "Raven",
	"Wolf", "Panda", "Beaver", "Marten", "Weasel", "Puffin", "Walrus", "Moose",
}

// GetRandomName returns a random name by combining an adjective with an animal
// It is used as the default nickname of a new user
func GetRandomName() string {
	adjectivesIndex := random.Intn(len(adjectives))
	animalsIndex := random.Intn(len(animals))

	return fmt.Sprintf("%s %s", adjectives[adjectivesIndex], animals[animalsIndex])
}
