package main

import (
	"fmt"
	"log"

	"github.com/yiblet/clipvault/internal/history"
	"github.com/yiblet/clipvault/internal/store"
	"github.com/yiblet/clipvault/internal/store/memstore"
)

func main() {
	fmt.Println("clipvault Storage Engine Demo")

	// Tight cap so retention pruning is visible.
	st := memstore.NewMemoryStore(3)
	manager := history.NewManager(st)
	defer manager.Close()

	workID, err := st.Groups().Create("Work")
	if err != nil {
		log.Fatalf("Failed to create group: %v", err)
	}
	fmt.Printf("Created group %d (Work)\n\n", workID)

	captures := []string{
		"Hello, World! This is the first clipboard capture.",
		"SELECT * FROM items WHERE pinned = 1 ORDER BY pinned_at;",
		"Lorem ipsum dolor sit amet, consectetur adipiscing elit.",
		"#FF00FF",
		"https://go.dev/doc/effective_go and https://gorm.io/docs",
	}

	fmt.Println("Capturing items (cap = 3 unpinned per group):")
	var firstID int64
	for i, text := range captures {
		contentType := store.TypeText
		if _, ok := history.ParseColorText(text); ok {
			contentType = store.TypeColor
		}
		id, err := manager.Capture(&history.CaptureInput{
			ContentType: contentType,
			ContentText: text,
		})
		if err != nil {
			log.Printf("Failed to capture item %d: %v", i, err)
			continue
		}
		if i == 0 {
			firstID = id
			// Pinning exempts the very first capture from eviction.
			if err := st.Items().SetPinned(id, true); err != nil {
				log.Printf("Failed to pin item %d: %v", id, err)
			}
		}
		fmt.Printf("%d. [%s] stored as item %d\n", i+1, contentType, id)
	}

	items, err := st.Items().List(nil)
	if err != nil {
		log.Fatalf("Failed to list items: %v", err)
	}

	fmt.Printf("\nSurviving items (pinned first, then freshest):\n")
	for i, item := range items {
		marker := ""
		if item.Pinned {
			marker = " (pinned)"
		}
		fmt.Printf("%d. item %d%s: %s\n", i, item.ID, marker, history.Label(item))
	}

	for _, item := range items {
		subs, err := st.Subitems().List(item.ID)
		if err != nil || len(subs) == 0 {
			continue
		}
		fmt.Printf("\nScanned subitems of item %d:\n", item.ID)
		for _, sub := range subs {
			fmt.Printf("  [%s] %s\n", sub.Tag, sub.Text)
		}
	}

	fmt.Printf("\nPinned item %d survived all pruning passes.\n", firstID)
	fmt.Println("Demo complete! (Using in-memory store)")
}
