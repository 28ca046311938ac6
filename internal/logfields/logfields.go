package logfields

import "go.uber.org/zap"

func Event(val string) zap.Field {
	return zap.String("event", val)
}

func PullRequest(val int) zap.Field {
	return zap.Int("github.pull_request", val)
}

// Repository is the repository in owner/name notation.
func Repository(val string) zap.Field {
	return zap.String("github.repository", val)
}

func Author(val string) zap.Field {
	return zap.String("github.author", val)
}

func CheckRun(val string) zap.Field {
	return zap.String("github.check_run", val)
}

func Branch(val string) zap.Field {
	return zap.String("git.branch", val)
}

func Commit(val string) zap.Field {
	return zap.String("git.commit", val)
}
