package transcribe

import (
	"sort"

	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

// Stream holds the events of each song, keyed by song index.
// Within a song, events are in scan order, which is also time order.
type Stream map[int][]Event

func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := maps.Keys(m)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Songs returns the song indexes present in the stream, in ascending order.
func (s Stream) Songs() []int {
	return sortedKeys(s)
}

// Total returns the number of events across all songs.
func (s Stream) Total() int {
	total := 0
	for _, events := range s {
		total += len(events)
	}
	return total
}

// ChannelCounts returns how many events of a song were assigned to each channel.
// Index 0 is Square1.
func (s Stream) ChannelCounts(song int) [NumChannels]int {
	var counts [NumChannels]int
	for _, e := range s[song] {
		if e.Channel >= Square1 && e.Channel <= Noise {
			counts[e.Channel-1]++
		}
	}
	return counts
}
