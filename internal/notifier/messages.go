package notifier

import (
	"fmt"

	"github.com/example/lexibot/pkg/models"
)

func reviewReminder(userID string, dueCount int) models.Notification {
	message := fmt.Sprintf("You have %d cards ready for review. A few minutes now keeps them fresh.", dueCount)
	if dueCount == 1 {
		message = "You have 1 card ready for review. A minute now keeps it fresh."
	}
	return models.Notification{
		UserID:       userID,
		Type:         models.NotificationReviewReminder,
		Title:        "Time to review",
		Message:      message,
		Icon:         "📚",
		ActionTarget: "/review",
	}
}

func streakWarning(userID string) models.Notification {
	return models.Notification{
		UserID:       userID,
		Type:         models.NotificationStreakWarning,
		Title:        "Your streak is at risk",
		Message:      "You haven't studied today yet. Log in before midnight to keep your streak alive.",
		Icon:         "🔥",
		ActionTarget: "/review",
	}
}

func challengeInviteNotification(userID string, invite challengeInvite) models.Notification {
	return models.Notification{
		UserID:       userID,
		Type:         models.NotificationChallengeInvite,
		Title:        "New group challenge",
		Message:      fmt.Sprintf("%s started a new challenge today: %s", invite.groupName, invite.challenge),
		Icon:         "🏆",
		ActionTarget: "/groups/" + invite.groupID,
	}
}

func streakMilestone(userID string, days int) models.Notification {
	return models.Notification{
		UserID:       userID,
		Type:         models.NotificationAchievementEarned,
		Title:        "Achievement earned",
		Message:      fmt.Sprintf("%d days of learning in a row. Keep it up!", days),
		Icon:         "🎖️",
		ActionTarget: "/achievements",
	}
}
