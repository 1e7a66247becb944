package cards

import (
	"context"
	"fmt"

	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/overlay/layout"
	"github.com/yungbote/overlay-backend/internal/platform/pointers"
	"github.com/yungbote/overlay-backend/internal/widgets"
)

const (
	TypeID = "CardBoardWidget"

	maxCards = 40
)

func Descriptor() widgets.Descriptor {
	return widgets.Descriptor{
		TypeID:      TypeID,
		DisplayName: "Card Board",
		Description: "Grid of face-down cards revealed one at a time",
		Factory:     func() widgets.Widget { return &Widget{} },
		Operations:  []string{"layout"},
	}
}

// CardName is the element name of the n-th card, counting from 1.
func CardName(n int) string { return fmt.Sprintf("card_%d", n) }

type Widget struct{}

func (w *Widget) DefaultParameters() map[string]any {
	return map[string]any{
		"card_count":  10,
		"columns":     2,
		"grid_width":  0.8,
		"grid_height": 0.85,
		"row_gap":     0.03,
		"column_gap":  0.05,
		"front_text":  "?",
	}
}

func gridSpec(inst *widgets.Instance) layout.GridSpec {
	return layout.GridSpec{
		Count:     inst.ParamInt("card_count", 10),
		Columns:   inst.ParamInt("columns", 2),
		Width:     inst.ParamFloat("grid_width", 0.8),
		Height:    inst.ParamFloat("grid_height", 0.85),
		RowGap:    inst.ParamFloat("row_gap", 0.03),
		ColumnGap: inst.ParamFloat("column_gap", 0.05),
	}
}

func invalidBoard(msg string, args ...any) error {
	return &types.ValidationError{Subject: "card board parameters", Errors: []string{fmt.Sprintf(msg, args...)}}
}

// placements returns each card's position and size, with the grid centered
// on the overlay. Bad board parameters come back as a ValidationError.
func placements(g layout.GridSpec) ([]map[string]any, map[string]any, error) {
	if g.Count < 1 || g.Count > maxCards {
		return nil, nil, invalidBoard("card_count must be between 1 and %d, got %d", maxCards, g.Count)
	}
	if g.Width <= 0 || g.Width > 1 || g.Height <= 0 || g.Height > 1 {
		return nil, nil, invalidBoard("grid_width and grid_height must be in (0, 1]")
	}
	points, err := layout.GridPositions(g)
	if err != nil {
		return nil, nil, invalidBoard("%s", err.Error())
	}
	cellW, cellH := g.Cell()
	if cellW <= 0 || cellH <= 0 {
		return nil, nil, invalidBoard("gaps leave no room for %d cards", g.Count)
	}
	offX, offY := (1-g.Width)/2, (1-g.Height)/2
	out := make([]map[string]any, 0, len(points))
	for _, p := range points {
		out = append(out, map[string]any{"x": p.X + offX, "y": p.Y + offY, "anchor": "top-left"})
	}
	return out, map[string]any{"width": cellW, "height": cellH}, nil
}

func (w *Widget) CreateDefaultElements(ctx context.Context, inst *widgets.Instance) error {
	positions, size, err := placements(gridSpec(inst))
	if err != nil {
		return err
	}
	front := inst.ParamString("front_text", "?")
	for n, pos := range positions {
		if _, err := inst.AddElement(ctx, widgets.ElementSpec{
			Name: CardName(n + 1),
			Type: types.ElementCard,
			Properties: map[string]any{
				"position":    pos,
				"size":        size,
				"revealed":    false,
				"front_text":  front,
				"back_text":   "",
				"media_roles": []any{"front", "back"},
			},
			Visible: true,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Widget) Features() *widgets.FeatureSet {
	return widgets.NewFeatureSet(
		widgets.Feature{
			MethodName:  "reveal_card",
			DisplayName: "Reveal Card",
			Description: "Flip one card face up",
			Order:       1,
			Parameters: []widgets.Param{
				{Name: "card", Type: widgets.ParamInteger, Label: "Card Number", Min: pointers.Float64(1), Max: pointers.Float64(maxCards)},
				{Name: "text", Type: widgets.ParamString, Label: "Back Text", Optional: true, Placeholder: "Keep current text"},
			},
			Run: revealCard,
		},
		widgets.Feature{
			MethodName:  "hide_all",
			DisplayName: "Hide All",
			Description: "Flip every card face down",
			Order:       2,
			Run:         hideAll,
		},
		widgets.Feature{
			MethodName:  "reset",
			DisplayName: "Reset Board",
			Description: "Lay the cards out again from the current parameters and clear their text",
			Order:       3,
			Run:         reset,
		},
	)
}

func revealCard(ctx context.Context, inst *widgets.Instance, p widgets.Params) (any, error) {
	name := CardName(p.Int("card", 0))
	patch := map[string]any{"revealed": true}
	if p.Has("text") {
		patch["back_text"] = p.String("text")
	}
	if _, err := inst.UpdateElementProperties(ctx, name, patch); err != nil {
		return nil, err
	}
	return map[string]any{"card": name}, nil
}

func hideAll(ctx context.Context, inst *widgets.Instance, _ widgets.Params) (any, error) {
	hidden := 0
	for _, el := range inst.Elements() {
		if el.ElementType != types.ElementCard {
			continue
		}
		if _, err := inst.UpdateElementProperties(ctx, el.Name, map[string]any{"revealed": false}); err != nil {
			return nil, err
		}
		hidden++
	}
	return map[string]any{"hidden": hidden}, nil
}

// reset repositions existing cards only; it never adds or removes cards.
func reset(ctx context.Context, inst *widgets.Instance, _ widgets.Params) (any, error) {
	var cards []*types.Element
	for _, el := range inst.Elements() {
		if el.ElementType == types.ElementCard {
			cards = append(cards, el)
		}
	}
	g := gridSpec(inst)
	g.Count = len(cards)
	positions, size, err := placements(g)
	if err != nil {
		return nil, err
	}
	front := inst.ParamString("front_text", "?")
	for n, el := range cards {
		if _, err := inst.UpdateElementProperties(ctx, el.Name, map[string]any{
			"position":   positions[n],
			"size":       size,
			"revealed":   false,
			"front_text": front,
			"back_text":  "",
		}); err != nil {
			return nil, err
		}
	}
	return map[string]any{"cards": len(cards)}, nil
}
