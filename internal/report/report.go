// Package report queries weekly report records, groups them by responsible
// approver and writes approval decisions back in bounded batches.
package report

// Status is the canonical approval status written to the table. Values must
// match the single-select options of the status column exactly.
type Status string

const (
	StatusApprove Status = "Approve"
	StatusReject  Status = "Reject"
)

// Record is one report row.
type Record struct {
	RecordID string
	Fields   map[string]any
}

// ManagerGroup collects the recent records assigned to one approver.
type ManagerGroup struct {
	ManagerID   string
	ManagerName string
	Records     []Record
}

// UpdateResult reports a completed status write.
type UpdateResult struct {
	Success      bool
	UpdatedCount int
}

// Grouping holds manager groups in first-seen order of approver id. It is
// built fresh on every call and never cached.
type Grouping struct {
	groups map[string]*ManagerGroup
	order  []string
}

func NewGrouping() *Grouping {
	return &Grouping{groups: make(map[string]*ManagerGroup)}
}

// Add appends a record to the approver's group, creating the group on first
// sight.
func (g *Grouping) Add(managerID, managerName string, rec Record) {
	group, ok := g.groups[managerID]
	if !ok {
		group = &ManagerGroup{ManagerID: managerID, ManagerName: managerName}
		g.groups[managerID] = group
		g.order = append(g.order, managerID)
	}
	group.Records = append(group.Records, rec)
}

// Get returns the group for one approver, or nil.
func (g *Grouping) Get(managerID string) *ManagerGroup {
	return g.groups[managerID]
}

// All returns the groups in first-seen order.
func (g *Grouping) All() []*ManagerGroup {
	out := make([]*ManagerGroup, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.groups[id])
	}
	return out
}

// Len is the number of approvers with at least one record.
func (g *Grouping) Len() int {
	return len(g.order)
}
