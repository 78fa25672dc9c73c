package models

// Follow represents a follow relationship between two users
type Follow struct {
	Follower  string `json:"followerUsername"`
	Following string `json:"followingUsername"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// FollowCounts is the follower summary shown on a profile
type FollowCounts struct {
	Followers   int  `json:"followersCount"`
	Following   int  `json:"followingCount"`
	IsFollowing bool `json:"isFollowing"`
}
