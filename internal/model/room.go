package model

import "time"

// Room capacity bounds.
const (
	MinRoomMembers     = 2
	MaxRoomMembers     = 200
	DefaultRoomMembers = 50
)

// Room is a bounded-capacity group of users discussing one movie.  The
// creator is enrolled on creation, can never leave, and never changes.
// MemberIDs is the room's member set in join order; it is only mutated
// through the membership store's room-locked transaction.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – display name (not unique).
//	Description – optional free text.
//	MovieID     – catalog movie the room discusses.
//	CreatorID   – user who created the room.
//	IsPrivate   – hidden from discovery when true.
//	MaxMembers  – capacity, 2..200.
//	MemberIDs   – current members.
type Room struct {
	ID          uint64    // rooms.id
	Name        string    // rooms.name
	Description string    // rooms.description
	MovieID     uint64    // rooms.movie_id
	CreatorID   uint64    // rooms.creator_id
	IsPrivate   bool      // rooms.is_private
	MaxMembers  int       // rooms.max_members
	MemberIDs   []uint64  // room_members.user_id
	CreatedAt   time.Time // rooms.created_at
	UpdatedAt   time.Time // rooms.updated_at
}

// HasMember reports whether userID is in the member set.
func (r Room) HasMember(userID uint64) bool {
	for _, id := range r.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether another member would exceed capacity.
func (r Room) IsFull() bool { return len(r.MemberIDs) >= r.MaxMembers }

// RoomPatch carries the creator-editable fields; nil means unchanged.
type RoomPatch struct {
	Name        *string
	Description *string
	IsPrivate   *bool
	MaxMembers  *int
}

// Apply copies the set fields of patch onto r.
func (r *Room) Apply(patch RoomPatch) {
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.Description != nil {
		r.Description = *patch.Description
	}
	if patch.IsPrivate != nil {
		r.IsPrivate = *patch.IsPrivate
	}
	if patch.MaxMembers != nil {
		r.MaxMembers = *patch.MaxMembers
	}
}

// RoomView is the read-side projection returned to callers.  MemberCount is
// derived when the view is built and never stored.
type RoomView struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	MovieID     uint64    `json:"movie_id"`
	CreatorID   uint64    `json:"creator_id"`
	IsPrivate   bool      `json:"is_private"`
	MaxMembers  int       `json:"max_members"`
	MemberCount int       `json:"member_count"`
	MemberIDs   []uint64  `json:"member_ids,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// View builds the projection.  Member ids are only included when
// withMembers is set (room detail).
func (r Room) View(withMembers bool) RoomView {
	v := RoomView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		MovieID:     r.MovieID,
		CreatorID:   r.CreatorID,
		IsPrivate:   r.IsPrivate,
		MaxMembers:  r.MaxMembers,
		MemberCount: len(r.MemberIDs),
		CreatedAt:   r.CreatedAt,
	}
	if withMembers {
		v.MemberIDs = append([]uint64(nil), r.MemberIDs...)
	}
	return v
}

// Clone returns a deep copy so callers can never alias a store's member set.
func (r Room) Clone() Room {
	r.MemberIDs = append([]uint64(nil), r.MemberIDs...)
	return r
}

// RoomFilter narrows room discovery.  Zero values mean "no filter".
type RoomFilter struct {
	MovieID uint64
	Search  string
	Limit   int
}
