package banner

import "math/rand/v2"

// quotes are short lines about technology printed along the bottom edge.
var quotes = []string{
	"Technology is best when it brings people together.",
	"Talk is cheap, show me the code",
	"It is only when they go wrong that machines remind you how powerful they are.",
	"Data! Data Data! I can't make bricks without clay!",
	"Without data you're just another person with an opinion.",
	"If the statistics are boring, you've got the wrong numbers.",
	"Data is a precious thing and will last longer than the systems themselves.",
	"Errors using inadequate data are much less than those using no data at all.",
	"It's not a faith in technology. It's faith in people.",
	"I have not failed. I've just found 10,000 ways that won't work.",
	"Technology like art is a soaring exercise of the human imagination.",
	"Innovation is the outcome of a habit, not a random act.",
	"Any sufficiently advanced technology is indistinguishable from magic.",
	"It's not that we use technology, we live technology.",
	"You affect the world by what you browse.",
	"What new technology does is create new opportunities to do a job that customers want done.",
	"Let's go invent tomorrow instead of worrying about what happened yesterday.",
	"The great growling engine of change - technology.",
	"Computers are useless. They can only give you answers.",
	"The human spirit must prevail over technology",
	"Books don't need batteries.",
	"The production of too many useful things results in too many useless people",
	"Technology is a useful servant but a dangerous master.",
	"Any technology distinguishable from magic is insufficiently advanced",
	"I might love my e-reader, but I'd never pass up the chance to browse real books.",
	"We are stuck with technology when what we really want is just stuff that works.",
}

// RandomQuote returns one of the built-in quotes.
func RandomQuote() string {
	return quotes[rand.IntN(len(quotes))]
}
