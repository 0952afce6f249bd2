package placement

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

type AttachResult struct {
	// Target is the matrix the node was attached to, a house replacement
	// when the requested one was already full.
	Target *domain.Matrix
	// Level is 1 for a first-level attach, 2 for second level.
	Level int
	// BranchID is the first-level node that took the member on level 2.
	BranchID    string
	HouseUserID int64
	Archived    []*domain.Matrix
	// Replacements are the open house matrices that took over archived ones,
	// Created only those that did not exist before.
	Replacements  []*domain.Matrix
	Created       []*domain.Matrix
	Notifications []domain.Notification
}

// Attach puts node (an already stored matrix of member) into targetID.
// Calling it twice with the same node is rejected with ErrNodeAlreadyAttached.
// Notifications are returned for delivery after the unit of work commits.
func (e *Engine) Attach(ctx context.Context, targetID string, node *domain.Matrix, member *domain.TelegramUser) (*AttachResult, error) {
	house, err := e.repos.Users.GetAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("get house account: %w", err)
	}
	target, err := e.repos.Matrices.GetMatrixByIDForUpdate(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("lock target matrix: %w", err)
	}

	res := &AttachResult{HouseUserID: house.UserID}
	if !e.HasOpenSlot(target) {
		if target.OwnerID != house.UserID {
			return nil, fmt.Errorf("%w: %s", domain.ErrMatrixFull, target.ID)
		}
		// столы дома размножаются: закрываем полный и создаем новый
		if err := e.archive(ctx, target, house, res); err != nil {
			return nil, err
		}
		target = res.Replacements[len(res.Replacements)-1]
		target, err = e.repos.Matrices.GetMatrixByIDForUpdate(ctx, target.ID)
		if err != nil {
			return nil, fmt.Errorf("lock replacement matrix: %w", err)
		}
	}
	res.Target = target

	label := domain.NodeLabel(member.Username, node.ID, e.now())
	if !target.FirstLevelFull() {
		err = e.attachFirstLevel(ctx, target, node, member, label, res)
	} else {
		err = e.attachSecondLevel(ctx, target, node, member, label, res)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (e *Engine) attachFirstLevel(ctx context.Context, target, node *domain.Matrix, member *domain.TelegramUser, label string, res *AttachResult) error {
	if err := target.AttachFirstLevel(node.ID, label, member.UserID); err != nil {
		return err
	}
	if err := e.repos.Matrices.UpdateMatrix(ctx, target); err != nil {
		return fmt.Errorf("update target matrix: %w", err)
	}
	res.Level = 1
	res.Notifications = append(res.Notifications, firstLevelGrowth(target))

	parent, err := e.repos.Matrices.GetParentMatrix(ctx, target.ID, target.Status, target.BuildType)
	if errors.Is(err, domain.ErrMatrixNotFound) {
		return e.closeIfFull(ctx, res, target)
	}
	if err != nil {
		return fmt.Errorf("get parent matrix: %w", err)
	}
	parent, err = e.repos.Matrices.GetMatrixByIDForUpdate(ctx, parent.ID)
	if err != nil {
		return fmt.Errorf("lock parent matrix: %w", err)
	}
	if err := parent.AttachSecondLevel(target.ID, node.ID, label, member.UserID); err != nil {
		return fmt.Errorf("propagate to parent %s: %w", parent.ID, err)
	}
	if err := e.repos.Matrices.UpdateMatrix(ctx, parent); err != nil {
		return fmt.Errorf("update parent matrix: %w", err)
	}
	return e.closeIfFull(ctx, res, target, parent)
}

func (e *Engine) attachSecondLevel(ctx context.Context, target, node *domain.Matrix, member *domain.TelegramUser, label string, res *AttachResult) error {
	branchID, err := e.openBranch(ctx, target)
	if err != nil {
		return err
	}
	if err := target.AttachSecondLevel(branchID, node.ID, label, member.UserID); err != nil {
		return err
	}
	if err := e.repos.Matrices.UpdateMatrix(ctx, target); err != nil {
		return fmt.Errorf("update target matrix: %w", err)
	}
	res.Level = 2
	res.BranchID = branchID

	child, err := e.repos.Matrices.GetMatrixByIDForUpdate(ctx, branchID)
	if err != nil {
		return fmt.Errorf("lock branch matrix: %w", err)
	}
	if err := child.AttachFirstLevel(node.ID, label, member.UserID); err != nil {
		return fmt.Errorf("attach to branch %s: %w", child.ID, err)
	}
	if err := e.repos.Matrices.UpdateMatrix(ctx, child); err != nil {
		return fmt.Errorf("update branch matrix: %w", err)
	}
	// уведомление получает владелец ветки, а не владелец стола
	res.Notifications = append(res.Notifications, firstLevelGrowth(child))
	return e.closeIfFull(ctx, res, target, child)
}

// openBranch returns the earliest created first-level node of m that still has
// room for a second-level member.
func (e *Engine) openBranch(ctx context.Context, m *domain.Matrix) (string, error) {
	nodes, err := e.repos.Matrices.GetMatricesByIDs(ctx, m.FirstLevelIDs())
	if err != nil {
		return "", fmt.Errorf("get first-level nodes: %w", err)
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].CreatedAt.Before(nodes[j].CreatedAt) })
	for _, n := range nodes {
		if b, ok := m.Branch(n.ID); ok && len(b.Children) < m.Width() {
			return n.ID, nil
		}
	}
	return "", fmt.Errorf("%w: no open branch in %s", domain.ErrMatrixFull, m.ID)
}

func (e *Engine) closeIfFull(ctx context.Context, res *AttachResult, matrices ...*domain.Matrix) error {
	house, err := e.repos.Users.GetAdmin(ctx)
	if err != nil {
		return fmt.Errorf("get house account: %w", err)
	}
	for _, m := range matrices {
		if m.HasOpenSlot() || m.Archived {
			continue
		}
		if err := e.archive(ctx, m, house, res); err != nil {
			return err
		}
	}
	return nil
}

// archive closes a full matrix. A house matrix gets its replacement at once.
func (e *Engine) archive(ctx context.Context, m *domain.Matrix, house *domain.TelegramUser, res *AttachResult) error {
	if !m.Archived {
		m.Archived = true
		if err := e.repos.Matrices.UpdateMatrix(ctx, m); err != nil {
			return fmt.Errorf("archive matrix: %w", err)
		}
		res.Archived = append(res.Archived, m)
		res.Notifications = append(res.Notifications, matrixClosed(m))
	}
	if m.OwnerID != house.UserID {
		return nil
	}
	return e.replace(ctx, m, house, res)
}

func (e *Engine) replace(ctx context.Context, m *domain.Matrix, house *domain.TelegramUser, res *AttachResult) error {
	// заменяем только если у дома не осталось открытого стола этого тарифа
	existing, err := e.repos.Matrices.GetUserMatrices(ctx, house.UserID, m.Status, m.BuildType)
	if err != nil {
		return fmt.Errorf("get house matrices: %w", err)
	}
	for _, x := range existing {
		if x.ID != m.ID && e.HasOpenSlot(x) {
			res.Replacements = append(res.Replacements, x)
			return nil
		}
	}
	fresh := e.NewMatrix(house.UserID, m.Status, m.BuildType)
	if err := e.repos.Matrices.CreateMatrix(ctx, fresh); err != nil {
		return fmt.Errorf("create house replacement: %w", err)
	}
	res.Replacements = append(res.Replacements, fresh)
	res.Created = append(res.Created, fresh)
	return nil
}
