package menu

import "zhukbot/internal/domain"

// Render produces the prompt and controls for a node
func (c *Catalog) Render(id domain.NodeID) (string, domain.Layout, error) {
	node, err := c.Node(id)
	if err != nil {
		return "", nil, err
	}

	if node.Layout == LayoutInline {
		buttons := make([]domain.InlineButton, 0, len(node.Children)+1)
		for _, entry := range node.Children {
			buttons = append(buttons, domain.InlineButton{Label: entry.Label, Payload: entry.Payload})
		}
		if node.InlineBack {
			buttons = append(buttons, domain.InlineButton{Label: c.back.Label, Payload: c.back.Payload})
		}
		return node.Prompt, domain.InlineButtons{Buttons: buttons}, nil
	}

	labels := make([]string, 0, len(node.Children)+1)
	for _, entry := range node.Children {
		labels = append(labels, entry.Label)
	}
	rows := chunk(labels, node.Columns)
	if node.Parent != "" {
		rows = append(rows, []string{c.back.Label})
	}
	return node.Prompt, domain.ReplyButtons{Rows: rows}, nil
}

func chunk(labels []string, n int) [][]string {
	var rows [][]string
	for i := 0; i < len(labels); i += n {
		end := i + n
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return rows
}
