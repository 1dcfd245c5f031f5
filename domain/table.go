package domain

type Table string

const (
	TableBids           = Table("bids")
	TableEscrows        = Table("escrows")
	TableAccounts       = Table("accounts")
	TableRewardTokens   = Table("reward_tokens")
	TableRewardBalances = Table("reward_balances")
	TableTreasury       = Table("treasury")
	TableAssetContracts = Table("asset_contracts")
	TableAssetHoldings  = Table("asset_holdings")
	TableAssetApprovals = Table("asset_approvals")
	TableEvents         = Table("events")
	TableTrackerStates  = Table("tracker_states")
)
