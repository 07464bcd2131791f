package pgsql

import (
	"strconv"
	"strings"

	"github.com/SscSPs/budget_sync_app/internal/core/domain"
)

// queryArgs collects positional arguments and hands out their placeholders.
type queryArgs struct {
	values []any
}

func (a *queryArgs) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildTransactionWhere renders a transaction filter as a WHERE clause over
// the transactions table aliased as t. The clause is never empty.
func buildTransactionWhere(filter domain.TransactionFilter, args *queryArgs) string {
	conds := make([]string, 0, 7)
	if filter.UserID != "" {
		conds = append(conds, "t.user_id = "+args.add(filter.UserID))
	}
	if !filter.IncludeRemoved {
		conds = append(conds, "t.removed_at IS NULL")
	}
	if filter.CategoryID != nil {
		conds = append(conds, "t.category_id = "+args.add(*filter.CategoryID))
	}
	if filter.BankAccountID != nil {
		conds = append(conds, "t.bank_account_id = "+args.add(*filter.BankAccountID))
	}
	if filter.From != nil {
		conds = append(conds, "t.txn_date >= "+args.add(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "t.txn_date <= "+args.add(*filter.To))
	}
	if filter.NameContains != "" {
		conds = append(conds, "t.name ILIKE '%' || "+args.add(likeEscaper.Replace(filter.NameContains))+" || '%'")
	}
	if len(conds) == 0 {
		return "WHERE TRUE"
	}
	return "WHERE " + strings.Join(conds, " AND ")
}
