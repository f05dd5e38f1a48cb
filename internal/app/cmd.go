package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はゲートサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
	// CommandUsers はオフラインのアカウント管理ツールを示す。
	// ネットワークゲートを経由せず、Credential Storeを直接操作する。
	CommandUsers Command = "users"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 第2戻り値はサブコマンドに渡す残りの引数。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) (Command, []string) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	switch args[0] {
	case "serve":
		return CommandServe, args[1:]
	case "migrate":
		return CommandMigrate, args[1:]
	case "healthcheck":
		return CommandHealthcheck, args[1:]
	case "users":
		return CommandUsers, args[1:]
	default:
		return CommandServe, nil
	}
}
