package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	// FindByIDForUpdate は読み書きトランザクション内で行をロックして取得します。
	FindByIDForUpdate(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
// 指定された項目は大文字小文字を区別しない部分一致で AND 結合されます。
type ListEmployeesFilter struct {
	Designation *string
	Department  *string
}

// MediaStore は社員写真の保存先です。
type MediaStore interface {
	// Upload は data URL・base64 文字列・http(s) URL を受け取り、正規の URL を返します。
	Upload(ctx context.Context, data string) (string, error)
	// Delete は URL が指す画像を削除します。呼び出し側はエラーを記録するのみで伝播しません。
	Delete(ctx context.Context, url string) error
}
