package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// The repositories read and write outside of any unit of work; UnitOfWork
// hands out transaction-scoped ones.
type RepositoryProvider struct {
	LinkedAccountRepo LinkedAccountRepositoryFacade
	TransactionRepo   TransactionRepositoryFacade
	CategoryRepo      CategoryRepositoryFacade
	BudgetRepo        BudgetRepositoryFacade
	UnitOfWork        UnitOfWork
}
