package placement

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

func (e *Engine) HasOpenSlot(m *domain.Matrix) bool {
	return !m.Archived && m.HasOpenSlot()
}

// IsSafeToFillNow reports whether attaching to m right now cannot collide with
// donations that already target it (or spill into it) and are not confirmed yet.
// Ties between open slots and pending claims are unsafe.
func (e *Engine) IsSafeToFillNow(ctx context.Context, m *domain.Matrix) (bool, error) {
	if !e.HasOpenSlot(m) {
		return false, nil
	}
	pending, err := e.repos.Donates.CountPendingDonates(ctx, m.ID)
	if err != nil {
		return false, fmt.Errorf("count pending donates: %w", err)
	}
	w := m.Width()

	if !m.FirstLevelFull() {
		open := w - m.FirstLevelCount()
		if open <= pending {
			return false, nil
		}
		parent, err := e.repos.Matrices.GetParentMatrix(ctx, m.ID, m.Status, m.BuildType)
		if errors.Is(err, domain.ErrMatrixNotFound) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("get parent matrix: %w", err)
		}
		return e.parentHasRoom(ctx, parent, m, pending)
	}

	// второй уровень: свои ожидающие плюс ожидающие у детей с местом на первом уровне
	open := w*w - m.SecondLevelCount()
	var candidates []string
	for _, b := range m.Tree {
		if len(b.Children) < w {
			candidates = append(candidates, b.NodeID)
		}
	}
	claims := pending
	if len(candidates) > 0 {
		counts, err := e.repos.Donates.CountPendingByMatrixIDs(ctx, candidates)
		if err != nil {
			return false, fmt.Errorf("count pending donates: %w", err)
		}
		for _, id := range candidates {
			claims += counts[id]
		}
	}
	return open > claims, nil
}

// parentHasRoom checks one hop up: the parent must keep strictly more open
// slots, counted over its first-level children up to and including m, than
// there are pending claims on them.
func (e *Engine) parentHasRoom(ctx context.Context, parent, m *domain.Matrix, pendingOwn int) (bool, error) {
	w := parent.Width()
	order, err := e.siblingOrder(ctx, parent)
	if err != nil {
		return false, err
	}

	openUpTo := 0
	var earlierOpen []string
	for _, id := range order {
		b, _ := parent.Branch(id)
		open := w - len(b.Children)
		openUpTo += open
		if id == m.ID {
			break
		}
		if open > 0 {
			earlierOpen = append(earlierOpen, id)
		}
	}

	claims := pendingOwn
	if len(earlierOpen) > 0 {
		counts, err := e.repos.Donates.CountPendingByMatrixIDs(ctx, earlierOpen)
		if err != nil {
			return false, fmt.Errorf("count pending donates: %w", err)
		}
		for _, id := range earlierOpen {
			claims += counts[id]
		}
	}
	if parent.FirstLevelFull() {
		// donations queued on the parent itself land on these same second-level slots
		n, err := e.repos.Donates.CountPendingDonates(ctx, parent.ID)
		if err != nil {
			return false, fmt.Errorf("count pending donates: %w", err)
		}
		claims += n
	}
	return openUpTo > claims, nil
}

// siblingOrder returns the parent's first-level node ids ordered by node
// creation time. Ids without a stored node keep their tree position at the end.
func (e *Engine) siblingOrder(ctx context.Context, parent *domain.Matrix) ([]string, error) {
	ids := parent.FirstLevelIDs()
	nodes, err := e.repos.Matrices.GetMatricesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get first-level nodes: %w", err)
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].CreatedAt.Before(nodes[j].CreatedAt) })

	seen := make(map[string]bool, len(nodes))
	order := make([]string, 0, len(ids))
	for _, n := range nodes {
		if _, ok := parent.Branch(n.ID); ok {
			order = append(order, n.ID)
			seen[n.ID] = true
		}
	}
	for _, id := range ids {
		if !seen[id] {
			order = append(order, id)
		}
	}
	return order, nil
}
