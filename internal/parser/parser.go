// Package parser extracts flashcards from markdown deck files. Cards are
// written as "Q:"/"A:" prefixed blocks, optionally separated by "---":
//
//	Q: What is a goroutine?
//	A: A lightweight thread managed
//	by the Go runtime.
//	---
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	separator   = "---"
)

// ParsedCard is one front/back pair read from a deck file.
type ParsedCard struct {
	Front string
	Back  string
}

type state int

const (
	seeking state = iota
	readingFront
	readingBack
)

// ParseFile reads a deck file from the given path and extracts all cards.
func ParseFile(path string) ([]ParsedCard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Cards without a
// front or without a back are skipped. Fronts are whitespace-trimmed since
// they act as the card's identity.
func Parse(r io.Reader) ([]ParsedCard, error) {
	scanner := bufio.NewScanner(r)
	var cards []ParsedCard
	var current ParsedCard
	var block []string
	currentState := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch currentState {
		case readingFront:
			current.Front = strings.TrimSpace(content)
		case readingBack:
			current.Back = strings.TrimRight(content, " \t\n")
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Front != "" && current.Back != "" {
			cards = append(cards, current)
		}
		current = ParsedCard{}
		currentState = seeking
	}

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == separator:
			finishCard()
		case strings.HasPrefix(line, frontPrefix):
			// A new front always starts a new card.
			if currentState != seeking {
				finishCard()
			}
			currentState = readingFront
			block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, frontPrefix), " "))
		case strings.HasPrefix(line, backPrefix):
			flushBlock()
			currentState = readingBack
			block = append(block, strings.TrimPrefix(strings.TrimPrefix(line, backPrefix), " "))
		case currentState != seeking:
			block = append(block, line)
		}
	}

	finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}
