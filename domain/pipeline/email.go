package pipeline

import (
	"bacref-backend-controller/utils"
	emailutils "bacref-backend-controller/utils/email"
	"fmt"
)

const curationEmailHTMLTemplate = `
<h1>文献预标注完成</h1>
<p>任务名：%s</p>
<p>成功标注文献数量：%d</p>
<p>标注失败文献数量：%d</p>

<p></p>
<p>更多信息请前往系统查看</p>
`

func sendCurationResultEmail(email, name string, done, failed int64) error {
	err := emailutils.SendHtml(
		email,
		"【文献整编系统】预标注完成",
		fmt.Sprintf(curationEmailHTMLTemplate, name, done, failed),
	)
	if err != nil {
		return utils.WrapErrorf(err, "send email to [%s] fail", email)
	}

	return nil
}
