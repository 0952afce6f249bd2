package domain

import (
	"fmt"
	"time"
)

// Branch - место первого уровня и его дочерние места (второй уровень)
type Branch struct {
	NodeID   string   `json:"node_id"`
	Children []string `json:"children"`
}

// DisplayBranch mirrors Branch with "<username> <node-id> <timestamp>" labels.
type DisplayBranch struct {
	Label    string   `json:"label"`
	Children []string `json:"children"`
}

type Matrix struct {
	ID          string
	OwnerID     int64
	Status      Status
	BuildType   BuildType
	Tree        []Branch
	DisplayTree []DisplayBranch
	Members     []int64
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m *Matrix) Width() int {
	return m.BuildType.Width()
}

func (m *Matrix) Capacity() int {
	return m.BuildType.Capacity()
}

func (m *Matrix) FirstLevelCount() int {
	return len(m.Tree)
}

func (m *Matrix) SecondLevelCount() int {
	n := 0
	for _, b := range m.Tree {
		n += len(b.Children)
	}
	return n
}

func (m *Matrix) Occupied() int {
	return m.FirstLevelCount() + m.SecondLevelCount()
}

func (m *Matrix) HasOpenSlot() bool {
	return m.Occupied() < m.Capacity()
}

func (m *Matrix) FirstLevelFull() bool {
	return m.FirstLevelCount() >= m.Width()
}

func (m *Matrix) IsFull() bool {
	return !m.HasOpenSlot()
}

func (m *Matrix) Branch(nodeID string) (*Branch, bool) {
	for i := range m.Tree {
		if m.Tree[i].NodeID == nodeID {
			return &m.Tree[i], true
		}
	}
	return nil, false
}

func (m *Matrix) FirstLevelIDs() []string {
	ids := make([]string, 0, len(m.Tree))
	for _, b := range m.Tree {
		ids = append(ids, b.NodeID)
	}
	return ids
}

func (m *Matrix) SecondLevelIDs() []string {
	var ids []string
	for _, b := range m.Tree {
		ids = append(ids, b.Children...)
	}
	return ids
}

func (m *Matrix) contains(nodeID string) bool {
	for _, b := range m.Tree {
		if b.NodeID == nodeID {
			return true
		}
		for _, c := range b.Children {
			if c == nodeID {
				return true
			}
		}
	}
	return false
}

// AttachFirstLevel appends node as a new first-level branch.
func (m *Matrix) AttachFirstLevel(nodeID, label string, memberID int64) error {
	if m.contains(nodeID) {
		return ErrNodeAlreadyAttached
	}
	if m.FirstLevelFull() || !m.HasOpenSlot() {
		return ErrMatrixFull
	}
	m.Tree = append(m.Tree, Branch{NodeID: nodeID, Children: []string{}})
	m.DisplayTree = append(m.DisplayTree, DisplayBranch{Label: label, Children: []string{}})
	m.Members = append(m.Members, memberID)
	return nil
}

// AttachSecondLevel appends node under the first-level branch parentNodeID.
func (m *Matrix) AttachSecondLevel(parentNodeID, nodeID, label string, memberID int64) error {
	if m.contains(nodeID) {
		return ErrNodeAlreadyAttached
	}
	if !m.HasOpenSlot() {
		return ErrMatrixFull
	}
	for i := range m.Tree {
		if m.Tree[i].NodeID != parentNodeID {
			continue
		}
		if len(m.Tree[i].Children) >= m.Width() {
			return ErrBranchFull
		}
		m.Tree[i].Children = append(m.Tree[i].Children, nodeID)
		if i < len(m.DisplayTree) {
			m.DisplayTree[i].Children = append(m.DisplayTree[i].Children, label)
		}
		m.Members = append(m.Members, memberID)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBranchNotFound, parentNodeID)
}

func (m *Matrix) Clone() *Matrix {
	if m == nil {
		return nil
	}
	c := *m
	c.Tree = make([]Branch, len(m.Tree))
	for i, b := range m.Tree {
		c.Tree[i] = Branch{NodeID: b.NodeID, Children: append([]string{}, b.Children...)}
	}
	c.DisplayTree = make([]DisplayBranch, len(m.DisplayTree))
	for i, b := range m.DisplayTree {
		c.DisplayTree[i] = DisplayBranch{Label: b.Label, Children: append([]string{}, b.Children...)}
	}
	c.Members = append([]int64{}, m.Members...)
	return &c
}

// NodeLabel builds the display key for a node.
func NodeLabel(username, nodeID string, at time.Time) string {
	return fmt.Sprintf("%s %s %s", username, nodeID, at.UTC().Format(time.RFC3339Nano))
}
