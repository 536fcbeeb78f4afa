package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam / attempt ────────────────────────────────────────────────
	ErrExamNotFound      ErrCode = "EXAM_NOT_FOUND"
	ErrExamNotPublished  ErrCode = "EXAM_NOT_PUBLISHED"
	ErrExamUpcoming      ErrCode = "EXAM_UPCOMING"
	ErrNotAllowedForExam ErrCode = "NOT_ALLOWED_FOR_EXAM"
	ErrAlreadyCompleted  ErrCode = "ALREADY_COMPLETED"
	ErrAgreementRequired ErrCode = "AGREEMENT_REQUIRED"
	ErrNoQuestions       ErrCode = "NO_QUESTIONS"
	ErrAttemptNotFound   ErrCode = "ATTEMPT_NOT_FOUND"
	ErrAlreadySubmitted  ErrCode = "ALREADY_SUBMITTED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "ইমেইল বা পাসওয়ার্ড সঠিক নয়।"
	case ErrEmailTaken:
		return "এই ইমেইল দিয়ে ইতিমধ্যে একটি অ্যাকাউন্ট রয়েছে।"
	case ErrTokenRequired:
		return "অথেনটিকেশন টোকেন প্রয়োজন।"
	case ErrTokenInvalid:
		return "অথেনটিকেশন টোকেন সঠিক নয়।"
	case ErrTokenExpired:
		return "অথেনটিকেশন টোকেনের মেয়াদ শেষ হয়ে গেছে।"

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "আপনার এই রিসোর্সে প্রবেশাধিকার নেই।"
	case ErrStudentAccessOnly:
		return "এই রিসোর্সটি শুধুমাত্র শিক্ষার্থীদের জন্য।"
	case ErrAdminAccessOnly:
		return "এই রিসোর্সটি শুধুমাত্র অ্যাডমিনদের জন্য।"

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "ভ্যালিডেশন ব্যর্থ হয়েছে। ইনপুট যাচাই করুন।"
	case ErrInvalidID:
		return "আইডির ফরম্যাট সঠিক নয়।"
	case ErrInvalidPayload:
		return "রিকোয়েস্ট পেলোড সঠিক নয়।"

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "রিসোর্স খুঁজে পাওয়া যায়নি।"
	case ErrConflict:
		return "রিসোর্সটি ইতিমধ্যে বিদ্যমান।"

	// ─── Exam / attempt ────────────────────────────────────────────────
	case ErrExamNotFound:
		return "পরীক্ষা খুঁজে পাওয়া যাচ্ছে না।"
	case ErrExamNotPublished:
		return "এই পরীক্ষাটি এখনও প্রকাশিত হয়নি।"
	case ErrExamUpcoming:
		return "পরীক্ষা শুরু করা যাবে না, কারণ এটি এখনও লাইভ হয়নি।"
	case ErrNotAllowedForExam:
		return "আপনি এই পরীক্ষায় অংশগ্রহণ করার জন্য অনুমোদিত নন।"
	case ErrAlreadyCompleted:
		return "এই পরীক্ষাটি একবারই দেওয়া যাবে। আপনি ইতিমধ্যে অংশগ্রহণ করেছেন।"
	case ErrAgreementRequired:
		return "পরীক্ষা শুরু করার আগে নির্দেশিকা পড়ে সম্মতি দিন।"
	case ErrNoQuestions:
		return "এই পরীক্ষায় কোনো প্রশ্ন নেই।"
	case ErrAttemptNotFound:
		return "কোনো চলমান পরীক্ষা পাওয়া যায়নি।"
	case ErrAlreadySubmitted:
		return "এই পরীক্ষার উত্তরপত্র ইতিমধ্যে জমা দেওয়া হয়েছে।"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "অনেক বেশি রিকোয়েস্ট। কিছুক্ষণ পরে আবার চেষ্টা করুন।"

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "সার্ভারে একটি অভ্যন্তরীণ সমস্যা হয়েছে।"
	default:
		return "একটি অপ্রত্যাশিত সমস্যা হয়েছে।"
	}
}
