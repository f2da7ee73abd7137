package main

import (
	"math/rand"
)

var examples = map[string]string{
	"Ask a quick question":          `fastask "how do I undo the last git commit?"`,
	"Explain whatever is on screen": `fastask -s "what does this error mean?"`,
	"Pipe something in for context": `cat main.go | fastask "why does this deadlock?"`,
	"Keep the conversation going":   `fastask --continue-last "and how do I avoid it next time?"`,
	"Save an answer for later":      `fastask -t "tar flags" "how do I extract a tar.gz?"`,
	"Read a saved answer, rendered": `fastask --show "tar flags"`,
}

func randomExample() (string, string) {
	keys := make([]string, 0, len(examples))
	for k := range examples {
		keys = append(keys, k)
	}
	desc := keys[rand.Intn(len(keys))] //nolint:gosec
	return desc, examples[desc]
}
