package widgets

import (
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/realtime"
)

type ElementView = realtime.ElementSnapshot

// Snapshot is the client-visible view of an element.
func Snapshot(el *types.Element) *ElementView { return realtime.Snapshot(el) }

type InstanceView struct {
	ID         uint           `json:"id"`
	TypeID     string         `json:"type_id"`
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	State      string         `json:"state"`
	Elements   []*ElementView `json:"elements"`
}

func (i *Instance) View() InstanceView {
	els := i.Elements()
	views := make([]*ElementView, 0, len(els))
	for _, el := range els {
		views = append(views, realtime.Snapshot(el))
	}
	return InstanceView{
		ID:         i.ID(),
		TypeID:     i.desc.TypeID,
		Name:       i.Name(),
		Parameters: i.Parameters(),
		State:      i.state.String(),
		Elements:   views,
	}
}
