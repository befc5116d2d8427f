package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeMembershipChanged = "membership.changed"
	EventTypeCacheRefresh      = "cache.refresh"
	EventTypeUserLoggedIn      = "user.logged_in"
)

// MembershipChangedEvent is raised once per group update and carries only
// the users whose membership actually flipped.
type MembershipChangedEvent struct {
	BaseEvent
	GroupKind string  `json:"group_kind"`
	GroupID   int64   `json:"group_id"`
	GroupName string  `json:"group_name"`
	UserIDs   []int64 `json:"user_ids"`
	ChangedBy int64   `json:"changed_by"`
}

func NewMembershipChangedEvent(groupKind string, groupID int64, groupName string, userIDs []int64, changedBy int64) *MembershipChangedEvent {
	return &MembershipChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMembershipChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"group_kind": groupKind,
				"group_id":   groupID,
				"group_name": groupName,
				"user_ids":   userIDs,
				"changed_by": changedBy,
			},
		},
		GroupKind: groupKind,
		GroupID:   groupID,
		GroupName: groupName,
		UserIDs:   userIDs,
		ChangedBy: changedBy,
	}
}

type CacheRefreshEvent struct {
	BaseEvent
	EntityTypes []string `json:"entity_types"`
}

func NewCacheRefreshEvent(entityTypes []string) *CacheRefreshEvent {
	return &CacheRefreshEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCacheRefresh,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity_types": entityTypes,
			},
		},
		EntityTypes: entityTypes,
	}
}

type UserLoggedInEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	RemoteIP string `json:"remote_ip"`
}

func NewUserLoggedInEvent(userID int64, userName, remoteIP string) *UserLoggedInEvent {
	return &UserLoggedInEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserLoggedIn,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":   userID,
				"user_name": userName,
				"remote_ip": remoteIP,
			},
		},
		UserID:   userID,
		UserName: userName,
		RemoteIP: remoteIP,
	}
}
