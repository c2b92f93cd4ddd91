package bot

// Command constants for Telegram bot commands.
const (
	CommandStart       = "/start"
	CommandBalance     = "/balance"
	CommandInvite      = "/invite"
	CommandLeaderboard = "/leaderboard"
	CommandTasks       = "/tasks"
)
