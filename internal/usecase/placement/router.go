package placement

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-matrix-service/internal/domain"
)

type RouteRequest struct {
	// Sponsor is the member's direct upline; nil routes straight to the house.
	Sponsor   *domain.TelegramUser
	Member    *domain.TelegramUser
	Amount    float64
	BuildType domain.BuildType
}

type RouteResult struct {
	Target    *domain.Matrix
	Status    domain.Status
	Placeable bool
	Credits   domain.CreditMap
	// Hops counts sponsors visited above the direct sponsor.
	Hops int
	// House is set when the target belongs to the house account.
	House bool
	// Fallback is set when the sponsor walk ended without a placeable ancestor.
	Fallback bool
}

// Route finds the matrix that receives req.Member. It may create the first
// house matrix of a tier, nothing else is written.
func (e *Engine) Route(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	status, ok := domain.StatusFor(req.Amount, req.BuildType)
	if !ok {
		return nil, fmt.Errorf("%w: %v for %s", domain.ErrInvalidAmount, req.Amount, req.BuildType)
	}

	house, err := e.repos.Users.GetAdmin(ctx)
	if err != nil {
		return nil, fmt.Errorf("get house account: %w", err)
	}

	if req.Sponsor == nil || req.Sponsor.IsAdmin {
		return e.routeToHouse(ctx, house, req, status, 0, false)
	}

	target, placeable, found, err := e.pickMatrix(ctx, req.Sponsor.UserID, status, req.BuildType)
	if err != nil {
		return nil, err
	}
	if found {
		return e.result(ctx, house, req, status, target, placeable, 0)
	}

	// Вверх по спонсорам. Обход ограничен глубиной участника и не заходит
	// повторно в уже просмотренных, чтобы битые ссылки не зациклили его.
	limit := req.Member.Depth + 1
	if limit < 1 {
		limit = 1
	}
	visited := map[int64]bool{req.Member.UserID: true, req.Sponsor.UserID: true}
	current := req.Sponsor
	hops := 0
	for current.SponsorUserID != nil {
		if hops >= limit {
			e.logger.Warn("sponsor walk exceeded depth bound, routing to house",
				"member_user_id", req.Member.UserID, "depth", req.Member.Depth, "hops", hops)
			break
		}
		next, err := e.repos.Users.GetUserByUserID(ctx, *current.SponsorUserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			e.logger.Warn("sponsor chain points to unknown user, routing to house",
				"member_user_id", req.Member.UserID, "sponsor_user_id", *current.SponsorUserID)
			break
		}
		if err != nil {
			return nil, fmt.Errorf("get sponsor: %w", err)
		}
		hops++
		if visited[next.UserID] {
			e.logger.Warn("sponsor chain loops, routing to house",
				"member_user_id", req.Member.UserID, "user_id", next.UserID)
			break
		}
		visited[next.UserID] = true
		if next.IsAdmin {
			break
		}
		current = next

		st := next.StatusFor(req.BuildType)
		if !st.IsActive() || !st.AtLeast(status) {
			continue
		}
		target, placeable, found, err := e.pickMatrix(ctx, next.UserID, status, req.BuildType)
		if err != nil {
			return nil, err
		}
		if found {
			return e.result(ctx, house, req, status, target, placeable, hops)
		}
	}
	return e.routeToHouse(ctx, house, req, status, hops, true)
}

// pickMatrix returns the oldest open matrix of owner that is safe to fill,
// or the oldest open one with placeable=false when none is safe.
func (e *Engine) pickMatrix(ctx context.Context, ownerID int64, status domain.Status, bt domain.BuildType) (*domain.Matrix, bool, bool, error) {
	matrices, err := e.repos.Matrices.GetUserMatrices(ctx, ownerID, status, bt)
	if err != nil {
		return nil, false, false, fmt.Errorf("get user matrices: %w", err)
	}
	var firstOpen *domain.Matrix
	for _, m := range matrices {
		if !e.HasOpenSlot(m) {
			continue
		}
		if firstOpen == nil {
			firstOpen = m
		}
		safe, err := e.IsSafeToFillNow(ctx, m)
		if err != nil {
			return nil, false, false, err
		}
		if safe {
			return m, true, true, nil
		}
	}
	if firstOpen != nil {
		return firstOpen, false, true, nil
	}
	return nil, false, false, nil
}

func (e *Engine) routeToHouse(ctx context.Context, house *domain.TelegramUser, req RouteRequest, status domain.Status, hops int, fallback bool) (*RouteResult, error) {
	target, err := e.houseMatrix(ctx, house, status, req.BuildType)
	if err != nil {
		return nil, err
	}
	return &RouteResult{
		Target:    target,
		Status:    status,
		Placeable: true,
		Credits:   domain.CreditMap{}.Add(house.UserID, req.Amount),
		Hops:      hops,
		House:     true,
		Fallback:  fallback,
	}, nil
}

// houseMatrix picks the first open house matrix of the tier, or the newest one
// (the mutator replaces it when full). A tier without any gets its first matrix.
func (e *Engine) houseMatrix(ctx context.Context, house *domain.TelegramUser, status domain.Status, bt domain.BuildType) (*domain.Matrix, error) {
	matrices, err := e.repos.Matrices.GetUserMatrices(ctx, house.UserID, status, bt)
	if err != nil {
		return nil, fmt.Errorf("get house matrices: %w", err)
	}
	for _, m := range matrices {
		if e.HasOpenSlot(m) {
			return m, nil
		}
	}
	if len(matrices) > 0 {
		return matrices[len(matrices)-1], nil
	}
	m := e.NewMatrix(house.UserID, status, bt)
	if err := e.repos.Matrices.CreateMatrix(ctx, m); err != nil {
		return nil, fmt.Errorf("create house matrix: %w", err)
	}
	return m, nil
}

func (e *Engine) result(ctx context.Context, house *domain.TelegramUser, req RouteRequest, status domain.Status, target *domain.Matrix, placeable bool, hops int) (*RouteResult, error) {
	res := &RouteResult{
		Target:    target,
		Status:    status,
		Placeable: placeable,
		Hops:      hops,
		House:     target.OwnerID == house.UserID,
	}
	if !placeable {
		return res, nil
	}
	recipient, err := e.Recipient(ctx, house, target)
	if err != nil {
		return nil, err
	}
	res.Credits = domain.CreditMap{}.Add(recipient, req.Amount)
	return res, nil
}

// Recipient resolves who is paid for a placement into target. Banned and
// unknown recipients are replaced by the house.
func (e *Engine) Recipient(ctx context.Context, house *domain.TelegramUser, target *domain.Matrix) (int64, error) {
	recipient := target.OwnerID
	if e.policy == CreditSecondLevel && !target.FirstLevelFull() {
		parent, err := e.repos.Matrices.GetParentMatrix(ctx, target.ID, target.Status, target.BuildType)
		switch {
		case errors.Is(err, domain.ErrMatrixNotFound):
			recipient = house.UserID
		case err != nil:
			return 0, fmt.Errorf("get parent matrix: %w", err)
		default:
			recipient = parent.OwnerID
		}
	}
	if recipient == house.UserID {
		return recipient, nil
	}

	user, err := e.repos.Users.GetUserByUserID(ctx, recipient)
	if errors.Is(err, domain.ErrUserNotFound) {
		e.logger.Warn("matrix owner not found, crediting house", "matrix_id", target.ID, "owner_id", recipient)
		return house.UserID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get recipient: %w", err)
	}
	if user.IsBanned {
		return house.UserID, nil
	}
	return recipient, nil
}
