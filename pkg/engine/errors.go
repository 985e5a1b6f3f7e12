package engine

// UserError is a caller error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// caller errors
const (
	ErrRoomNotFound     UserError = "room not found"
	ErrRoomFull         UserError = "room is full"
	ErrNotHost          UserError = "only the host may do that"
	ErrWrongPhase       UserError = "the room is not in the right phase for that"
	ErrNotPlaying       UserError = "you are not playing this match"
	ErrNoCards          UserError = "you have no cards to place"
	ErrCardNotInHand    UserError = "card is not in your hand"
	ErrRowFull          UserError = "that row is full"
	ErrBadPlacement     UserError = "wrong number of placements for this street"
	ErrBotNotFound      UserError = "bot not found"
	ErrMatchInProgress  UserError = "a match is already in progress"
	ErrNotEnoughPlayers UserError = "at least two players are required"
	ErrPlayerNotFound   UserError = "player not found"
)
