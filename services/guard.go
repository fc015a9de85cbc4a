package services

import (
	"context"
	"errors"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/Dosada05/friendly-matches/repositories"
)

// MatchGuard — критическая секция матча: мьютекс процесса, транзакция и
// SELECT ... FOR UPDATE по строке матча. Все изменения матча, его правила,
// записей и санкций проходят через неё.
type MatchGuard struct {
	locker    *matchLocker
	tx        repositories.Transactor
	matchRepo repositories.MatchRepository
}

func NewMatchGuard(tx repositories.Transactor, matchRepo repositories.MatchRepository) *MatchGuard {
	return &MatchGuard{
		locker:    newMatchLocker(),
		tx:        tx,
		matchRepo: matchRepo,
	}
}

// Run загружает матч под блокировкой и вызывает fn в одной транзакции.
func (g *MatchGuard) Run(ctx context.Context, matchID int, fn func(exec repositories.SQLExecutor, match *models.Match) error) error {
	unlock := g.locker.Lock(matchID)
	defer unlock()

	err := g.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := g.matchRepo.LockByID(ctx, exec, matchID); err != nil {
			return mapMatchRepoError(err, "lock match")
		}
		match, err := g.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			return mapMatchRepoError(err, "load match")
		}
		return fn(exec, match)
	})
	if err != nil && errors.Is(err, repositories.ErrTransaction) {
		return storeError("match transaction", err)
	}
	return err
}

// RunChecked пересчитывает статус матча, затем вызывает check и apply в одной транзакции.
// Отказ check фиксирует пересчитанный статус и возвращается после коммита.
// Ошибка apply откатывает всё.
func (g *MatchGuard) RunChecked(
	ctx context.Context,
	matchID int,
	reconciler *LifecycleReconciler,
	check func(exec repositories.SQLExecutor, match *models.Match) error,
	apply func(exec repositories.SQLExecutor, match *models.Match) error,
) error {
	var rejection error
	err := g.Run(ctx, matchID, func(exec repositories.SQLExecutor, match *models.Match) error {
		if _, err := reconciler.Reconcile(ctx, exec, match, TriggerRead); err != nil {
			return err
		}
		if err := check(exec, match); err != nil {
			if !isRejection(err) {
				return err
			}
			rejection = err
			return nil
		}
		return apply(exec, match)
	})
	if err != nil {
		return err
	}
	return rejection
}

func mapMatchRepoError(err error, op string) error {
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return storeError(op, err)
}
