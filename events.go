package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"murmur/history"
	"murmur/log"
	"murmur/pipeline"
)

// consoleSink mirrors pipeline events onto stdout. Level updates are skipped
// during dictation so the output area stays clean for the typed text.
type consoleSink struct{}

func (consoleSink) AudioLevel(float64) {}

func (consoleSink) SessionEmpty(id string) {
	fmt.Println("(no speech detected)")
}

func (consoleSink) SessionComplete(id, text string) {
	fmt.Printf("done (%d chars)\n", len(text))
}

func (consoleSink) SessionFailed(id string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func watchTransitions(ch <-chan pipeline.Transition) {
	for tr := range ch {
		switch tr.To {
		case pipeline.Recording:
			fmt.Println("recording... (release to stop)")
		case pipeline.Processing:
			fmt.Println("processing...")
		}
	}
}

// runMicTest drives the orchestrator's level-meter path and renders a bar
// until interrupted.
func runMicTest(orch *pipeline.Orchestrator, sig chan os.Signal) int {
	if err := orch.StartMicTest(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer orch.StopMicTest()

	fmt.Println("mic test — speak into the microphone, Ctrl+C to stop")
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-sig:
			fmt.Println()
			return 0
		case <-ticker.C:
			fmt.Printf("\r%s", levelBar(orch.Level()))
		}
	}
}

const barWidth = 40

func levelBar(level float64) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]" +
		fmt.Sprintf(" %4.0f%%", level*100)
}

func printHistory(store history.Store) int {
	if store == nil {
		fmt.Fprintln(os.Stderr, "Error: history disabled (set MURMUR_HISTORY_KEY)")
		return 1
	}
	records, err := store.List(context.Background())
	if err != nil {
		log.Errorf("history list: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Println("no history yet")
		return 0
	}
	for _, r := range records {
		fmt.Printf("%s  [%s]  %s\n", r.CreatedAt.Format("2006-01-02 15:04"), r.Mode, r.Enhanced)
	}
	return 0
}
