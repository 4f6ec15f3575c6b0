package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English key doubles as the English text.
const (
	msgFailed            = "%s failed"
	msgFailedWithDetails = "%s failed: %s"

	MsgSaved          = "Saved"
	MsgDeleted        = "Deleted"
	MsgDone           = "Done"
	MsgCancelled      = "Cancelled"
	MsgBaseConnected  = "BASE connection completed"
	MsgStoreSelected  = "Store switched to %s"
	MsgLoginRequired  = "Please sign in"
	MsgPromptExpired  = "The confirmation has expired"
	MsgInvalidRequest = "The request is invalid"
)

// Operation labels used with HandleError and HandleDBError.
const (
	OpLoadStores   = "Loading stores"
	OpSaveStore    = "Saving the store"
	OpLoadCasts    = "Loading casts"
	OpSaveCast     = "Saving the cast"
	OpDeleteCast   = "Deleting the cast"
	OpLoadShifts   = "Loading shifts"
	OpSaveShift    = "Saving the shift"
	OpDeleteShift  = "Deleting the shift"
	OpLoadSettings = "Loading BASE settings"
	OpSaveSettings = "Saving BASE settings"
	OpConnectBase  = "Connecting to BASE"
	OpLoadUsers    = "Loading users"
	OpSaveUser     = "Saving the user"
	OpDeleteUser   = "Deleting the user"
)

// Details shown after an operation label.
const (
	DetailShiftOverlap   = "the cast already works at that time"
	DetailShiftOrder     = "the end must be after the start"
	DetailShiftTime      = "the time is not selectable"
	DetailCastNotInStore = "the cast is not in this store"
	DetailInvalidState   = "invalid state"
	DetailStateExpired   = "state expired"
	DetailNotConfigured  = "credentials are not configured"
	DetailUserExists     = "the username or email is already used"
	DetailPasswordNeeded = "a password is required"
	DetailSelfDelete     = "you cannot delete your own account"
	DetailProtectedUser  = "superadmin accounts cannot be deleted"
)

func init() {
	ja := map[string]string{
		msgFailed:            "%sに失敗しました",
		msgFailedWithDetails: "%sに失敗しました: %s",

		MsgSaved:          "保存しました",
		MsgDeleted:        "削除しました",
		MsgDone:           "完了しました",
		MsgCancelled:      "キャンセルしました",
		MsgBaseConnected:  "BASE連携が完了しました",
		MsgStoreSelected:  "店舗を%sに切り替えました",
		MsgLoginRequired:  "ログインしてください",
		MsgPromptExpired:  "確認の有効期限が切れました",
		MsgInvalidRequest: "リクエストが不正です",

		OpLoadStores:   "店舗の読み込み",
		OpSaveStore:    "店舗の保存",
		OpLoadCasts:    "キャストの読み込み",
		OpSaveCast:     "キャストの保存",
		OpDeleteCast:   "キャストの削除",
		OpLoadShifts:   "シフトの読み込み",
		OpSaveShift:    "シフトの保存",
		OpDeleteShift:  "シフトの削除",
		OpLoadSettings: "BASE設定の読み込み",
		OpSaveSettings: "BASE設定の保存",
		OpConnectBase:  "BASE連携",
		OpLoadUsers:    "ユーザーの読み込み",
		OpSaveUser:     "ユーザーの保存",
		OpDeleteUser:   "ユーザーの削除",

		DetailShiftOverlap:   "同じ時間帯に別のシフトがあります",
		DetailShiftOrder:     "終了時刻は開始時刻より後にしてください",
		DetailShiftTime:      "選択できない時刻です",
		DetailCastNotInStore: "この店舗のキャストではありません",
		DetailInvalidState:   "認証状態が一致しません",
		DetailStateExpired:   "認証の有効期限が切れました",
		DetailNotConfigured:  "APIキーが設定されていません",
		DetailUserExists:     "ユーザー名またはメールアドレスは使用されています",
		DetailPasswordNeeded: "パスワードを入力してください",
		DetailSelfDelete:     "自分のアカウントは削除できません",
		DetailProtectedUser:  "スーパー管理者は削除できません",
	}

	for key, text := range ja {
		if err := message.SetString(language.Japanese, key, text); err != nil {
			panic(err)
		}
	}
}

// Printer returns a printer for locale, falling back to English.
func Printer(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	return message.NewPrinter(tag)
}
