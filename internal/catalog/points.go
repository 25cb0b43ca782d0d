package catalog

import "github.com/pet-progression/internal/domain"

// BasePoints is the interaction points table. Actions missing from the table
// award no base points.
var BasePoints = map[domain.ActionType]int{
	domain.ActionFeed:  10,
	domain.ActionSleep: 15,
	domain.ActionChat:  5,
	domain.ActionPlay:  10,
}

// ActionMessages is the message returned with a successful action.
var ActionMessages = map[domain.ActionType]string{
	domain.ActionFeed:  "Yum! Your pet enjoyed the meal.",
	domain.ActionSleep: "Your pet curled up for a cozy nap.",
	domain.ActionPlay:  "Your pet bounced around happily.",
	domain.ActionChat:  "Your pet listened closely and chirped back.",
}
