package config

// FAQSeed is a built-in FAQ definition loaded into the knowledge base on
// first start. Entries added at runtime through the admin API live next
// to these in the database; seeds are only inserted when the collection
// is empty.
type FAQSeed struct {
	ID       string
	Question string
	Answer   string
	Keywords []string
}

// DefaultFAQSeeds returns the built-in FAQ definitions
func DefaultFAQSeeds() []FAQSeed {
	return []FAQSeed{
		{
			ID:       "faq-what-is-defi",
			Question: "What is DeFi?",
			Answer:   "DeFi (decentralized finance) is an umbrella term for financial services built on public blockchains: lending, trading and earning interest without a traditional intermediary. Popular protocols include Uniswap, Aave and Compound.",
			Keywords: []string{"defi", "decentralized finance"},
		},
		{
			ID:       "faq-what-is-staking",
			Question: "What is staking?",
			Answer:   "Staking means locking your tokens to help secure a proof-of-stake network in exchange for rewards. Rewards vary by network and validator, and staked funds may be subject to an unbonding period.",
			Keywords: []string{"staking", "stake", "rewards"},
		},
		{
			ID:       "faq-connect-wallet",
			Question: "How do I connect my wallet?",
			Answer:   "Open the app, tap Connect Wallet and choose your provider (MetaMask, WalletConnect or Ledger). Never share your seed phrase with anyone, including our support staff.",
			Keywords: []string{"connect", "wallet", "metamask", "walletconnect"},
		},
		{
			ID:       "faq-withdrawal-time",
			Question: "How long do withdrawals take?",
			Answer:   "On-chain withdrawals are usually confirmed within 10-30 minutes depending on network congestion. If your withdrawal has been pending for more than an hour, contact support with the transaction hash.",
			Keywords: []string{"withdrawal", "withdraw", "pending", "transaction"},
		},
		{
			ID:       "faq-what-is-gas",
			Question: "What are gas fees?",
			Answer:   "Gas fees are the transaction costs paid to network validators. They rise when the network is busy. Ask me \"gas price\" any time for the current gas oracle reading.",
			Keywords: []string{"gas", "fees", "transaction cost"},
		},
		{
			ID:       "faq-supported-tokens",
			Question: "Which tokens do you support?",
			Answer:   "We currently support BTC, ETH, SOL, ADA, DOT, MATIC, LINK and most major ERC-20 tokens. Ask me \"<ticker> price\" for a live quote on any of them.",
			Keywords: []string{"tokens", "supported", "coins", "listing"},
		},
	}
}

// DefaultFallbackResponses returns the replies used when no FAQ entry
// clears the confidence threshold
func DefaultFallbackResponses() []string {
	return []string{
		"I'm not sure I understood that. Could you rephrase your question?",
		"Sorry, I don't have an answer for that yet. Try asking about prices, gas fees or our FAQ topics.",
		"Hmm, that one's beyond me. Type a question about wallets, staking or withdrawals, or ask for a coin price like \"BTC price\".",
		"I couldn't match that to anything I know. If it's urgent, say so and I'll loop in a human.",
	}
}

// CategoryKeywords holds the operator-defined keyword lists for
// escalation categories
type CategoryKeywords struct {
	Urgent []string
	Media  []string
	Audit  []string
}

// DefaultCategoryKeywords returns the built-in escalation keyword lists
func DefaultCategoryKeywords() CategoryKeywords {
	return CategoryKeywords{
		Urgent: []string{
			"urgent", "emergency", "asap", "immediately", "critical",
			"hacked", "stolen", "scam", "lost funds", "locked out",
		},
		Media: []string{
			"press", "interview", "journalist", "article", "podcast",
			"media", "partnership", "collaboration", "sponsor",
		},
		Audit: []string{
			"audit", "security review", "vulnerability", "exploit",
			"bug bounty", "pentest", "disclosure",
		},
	}
}

// DefaultDistressWords returns the generic distress vocabulary. Each hit
// contributes a small increment to the overall distress score even
// without a category match.
func DefaultDistressWords() []string {
	return []string{
		"help", "problem", "error", "broken", "down", "failed",
		"crash", "bug", "outage", "stuck", "issue", "not working",
	}
}

// DefaultProjectNames maps a topic to the external project names an
// answer may reference. Used only to decorate answers with a
// "referenced projects" footer, nothing structural depends on it.
func DefaultProjectNames() map[string][]string {
	return map[string][]string{
		"defi":    {"Uniswap", "Aave", "Compound", "Curve"},
		"wallets": {"MetaMask", "WalletConnect", "Ledger", "Trezor"},
		"chains":  {"Ethereum", "Solana", "Polygon", "Arbitrum"},
	}
}
