package apperr

import "strings"

const (
	ExitSuccess       = 0
	ExitGeneral       = 1
	ExitInvalidArgs   = 2
	ExitCredentials   = 3
	ExitAccessDenied  = 4
	ExitNetwork       = 5
	ExitUnavailable   = 6
	ExitRateLimited   = 7
	ExitUserCancelled = 130
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch KindOf(err) {
	case KindCredentials:
		return ExitCredentials
	case KindAccessDenied:
		return ExitAccessDenied
	case KindTimeout, KindNetwork:
		return ExitNetwork
	case KindUnavailable:
		return ExitUnavailable
	case KindThrottled:
		return ExitRateLimited
	case KindInvalidInput:
		return ExitInvalidArgs
	}
	return ExitGeneral
}

// Guidance returns a headline and the steps a user can take to fix err.
func Guidance(err error) (string, []string) {
	switch KindOf(err) {
	case KindCredentials:
		return "Model provider credentials not found or unusable.", []string{
			"Configure credentials using one of these methods:",
			"  1. Run 'aws configure' to set up default credentials",
			"  2. Set AWS_PROFILE or pass --profile to use a named profile",
			"  3. Use an IAM role when running on EC2/ECS/Lambda",
			"  4. Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY",
			"For other providers set OPENAI_API_KEY, YANDEX_OAUTH_TOKEN or GEMINI_API_KEY.",
		}
	case KindAccessDenied:
		return "Access denied to the configured model.", []string{
			"Request access to the model:",
			"  1. Open the Bedrock console and go to 'Model access'",
			"  2. Request access to the configured model and wait for approval",
			"  3. Ensure your IAM user or role has 'bedrock:InvokeModel' permission",
		}
	case KindTimeout:
		return "The model did not answer in time after all attempts.", []string{
			"  1. Check your network connection stability",
			"  2. Try again, this is usually temporary",
			"  3. Raise JOKE_TIMEOUT or try a different region",
		}
	case KindNetwork:
		return "Network connection error occurred.", []string{
			"  1. Check your internet connection",
			"  2. Check whether a proxy or firewall blocks the endpoint",
			"  3. Try again in a few moments",
		}
	case KindUnavailable:
		return "The model service is currently unavailable.", []string{
			"  1. Wait a few minutes and try again",
			"  2. Try a different region if the issue persists",
		}
	case KindThrottled:
		return "Rate limit exceeded for the model API.", []string{
			"  1. Wait 30-60 seconds before trying again",
			"  2. Consider requesting higher quotas from your provider",
		}
	case KindMalformed:
		return "The model returned no usable joke.", []string{
			"  1. Try generating another joke",
			"  2. Try a different category",
			"  3. If this persists, try a different model",
		}
	case KindInvalidInput:
		return "Invalid input.", []string{
			"Available categories: " + strings.Join(categoryNames, ", "),
			"Use --help to see all available options.",
		}
	case KindStorage:
		return "Feedback storage could not be read or written.", []string{
			"  1. Check permissions on ~/.joke_cli",
			"  2. Ensure sufficient disk space is available",
			"  3. Move a corrupt feedback file aside to start fresh",
		}
	case KindService:
		return "The model API rejected the request.", []string{
			"  1. Verify the model id is correct and available in your region",
			"  2. Try the default model",
		}
	}
	return "An unexpected error occurred.", []string{
		"  1. Try running the command again",
		"  2. Run with --verbose for details",
	}
}

// kept here rather than imported to avoid a dependency on the joke package
var categoryNames = []string{"general", "programming", "dad-jokes", "puns", "clean"}
