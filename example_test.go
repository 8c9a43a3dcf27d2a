package planner_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/planner"
	"github.com/aretw0/planner/pkg/domain"
)

// ExampleWorkspace_Undo places a device with its label, deletes it and brings it back.
func ExampleWorkspace_Undo() {
	ws, err := planner.New("example")
	if err != nil {
		log.Fatal(err)
	}
	defer ws.Close()

	ctx := context.Background()
	ap, err := ws.PlaceDevice(ctx, planner.DeviceSpec{
		ID:       "ap-1",
		Position: domain.Point{X: 10, Y: 10},
		Label:    "AP lobby",
	})
	if err != nil {
		log.Fatal(err)
	}

	if _, err := ws.Delete(ctx, ap.ID); err != nil {
		log.Fatal(err)
	}
	fmt.Println("after delete:", len(ws.Scene().List()))

	ws.Undo(ctx)
	snap, _ := ws.Snapshot(ctx)
	fmt.Println("after undo:", snap.Count(domain.KindDevice), snap.Count(domain.KindLabel))
	fmt.Println("devices listed:", len(snap.Registries[domain.RegistryDevices]))
	// Output:
	// after delete: 0
	// after undo: 1 1
	// devices listed: 1
}

// ExampleWorkspace_Stamp shows free-form insertions becoming undo steps on their own,
// while previews are refused.
func ExampleWorkspace_Stamp() {
	ws, _ := planner.New("example")
	defer ws.Close()

	ctx := context.Background()
	ws.Stamp(ctx, &domain.Entity{ID: "arrow", Kind: domain.KindShape})
	ws.Stamp(ctx, &domain.Entity{ID: "note", Kind: domain.KindText, Text: "Server room"})
	_, err := ws.Stamp(ctx, &domain.Entity{ID: "preview", Kind: domain.KindGuide, Transient: true})

	fmt.Println(errors.Is(err, domain.ErrNotStampable))
	fmt.Printf("%+v\n", ws.State())
	// Output:
	// true
	// {CanUndo:true CanRedo:false UndoDepth:2 RedoDepth:0}
}
